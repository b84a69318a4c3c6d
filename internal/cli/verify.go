package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Verify every configured account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openContainer()
			if err != nil {
				return err
			}
			err = c.VerifyAll(cmd.Context())
			for _, a := range c.Accounts() {
				st := a.State()
				status := "ok"
				if st.HasUnrecoverableError() {
					status = "unusable"
				}
				fmt.Printf("%-16s %-8s @%s %s\n", a.Name, a.Backend, st.UserName(), status)
			}
			return err
		},
	})

	RootCmd.AddCommand(&cobra.Command{
		Use:   "limits",
		Short: "Refresh account configuration and print reported rate limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openContainer()
			if err != nil {
				return err
			}
			a, err := selectAccount(c)
			if err != nil {
				return err
			}
			if err := a.Client().RefreshConfiguration(cmd.Context()); err != nil {
				return err
			}
			return writeLimits(os.Stdout, a.State().RateLimits, now())
		},
	})
}

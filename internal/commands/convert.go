package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ofxer-dev/ofxer/internal/camt"
	"github.com/ofxer-dev/ofxer/internal/config"
	"github.com/ofxer-dev/ofxer/internal/ofx"
)

func newConvertCommand() *cobra.Command {
	var (
		usecols     []int
		skipRows    int
		dateLayout  string
		encodingStr string
		output      string
		profileName string
		configPath  string
		account     string
	)

	cmd := &cobra.Command{
		Use:   "convert <csvfile>",
		Short: "Convert a bank CSV export to an OFX file",
		Long: `Convert a semicolon-delimited CSV export from a German bank portal
into an OFX statement file.

The four --usecols indices select the date, memo, title and amount
columns, counting from zero (e.g. --usecols 1,4,11,14). A --profile
supplies the whole layout instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvfile := args[0]
			if _, err := os.Stat(csvfile); err != nil {
				return fmt.Errorf("input file: %w", err)
			}

			cfg, acct, err := resolveConfig(cmd, usecols, skipRows, dateLayout, encodingStr, profileName, configPath)
			if err != nil {
				return err
			}
			if account != "" {
				acct = account
			}

			loader, err := camt.NewLoader(cfg, log)
			if err != nil {
				return err
			}
			records, err := loader.LoadFile(csvfile)
			if err != nil {
				return err
			}

			st := ofx.NewStatement(acct, ofx.DefaultCurrency, records)
			if err := ofx.NewWriter().WriteFile(output, st); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully converted to %s\n", output)
			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&usecols, "usecols", "c", nil,
		"column indices of date,memo,title,amount (counting from zero)")
	cmd.Flags().IntVarP(&skipRows, "skiprows", "s", 1,
		"number of leading lines to skip (incl. column names)")
	cmd.Flags().StringVarP(&dateLayout, "date-layout", "p", camt.DefaultDateLayout,
		"date layout of the date column, as a Go reference layout")
	cmd.Flags().StringVarP(&encodingStr, "encoding", "e", "",
		"input encoding (utf-8, latin1, windows-1252)")
	cmd.Flags().StringVarP(&output, "output", "o", "output.ofx",
		"path of the OFX file to write")
	cmd.Flags().StringVar(&profileName, "profile", "",
		"named profile supplying the CSV layout")
	cmd.Flags().StringVar(&configPath, "config", "",
		"ofxer.yaml file with additional profiles")
	cmd.Flags().StringVar(&account, "account", "",
		"account id stamped on the OFX statement")

	return cmd
}

// resolveConfig builds the loader configuration from either a profile or
// the individual flags. Explicit flags win over profile values.
func resolveConfig(cmd *cobra.Command, usecols []int, skipRows int, dateLayout, enc, profileName, configPath string) (camt.LoadConfig, string, error) {
	if profileName != "" {
		p, err := config.Resolve(profileName, configPath)
		if err != nil {
			return camt.LoadConfig{}, "", err
		}
		cfg, err := p.LoadConfig()
		if err != nil {
			return camt.LoadConfig{}, "", fmt.Errorf("profile %s: %w", profileName, err)
		}
		if cmd.Flags().Changed("skiprows") {
			cfg.SkipRows = skipRows
		}
		if cmd.Flags().Changed("date-layout") {
			cfg.DateLayout = dateLayout
		}
		if cmd.Flags().Changed("encoding") {
			cfg.Encoding = enc
		}
		return cfg, p.Account, nil
	}

	if len(usecols) != 4 {
		return camt.LoadConfig{}, "", fmt.Errorf("%w: --usecols needs exactly 4 indices, got %d",
			camt.ErrConfig, len(usecols))
	}
	cols, err := camt.NewColumns(usecols[0], usecols[1], usecols[2], usecols[3])
	if err != nil {
		return camt.LoadConfig{}, "", err
	}
	cfg := camt.LoadConfig{
		SkipRows:   skipRows,
		Columns:    cols,
		DateLayout: dateLayout,
		Encoding:   enc,
	}
	return cfg, "", cfg.Validate()
}

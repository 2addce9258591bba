package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/internal/config"
	"github.com/kordat/lazyref/pkg/record"
)

func newGetCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "get <class> <id> [field...]",
		Short: "Resolves an object (or specific fields) through the configured store",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			l := logger.Named("lazyref.get")

			c, err := config.NewLazyrefFromFile(configPath)
			if err != nil {
				return err
			}

			// --policy / LAZYREF_POLICY beats the config file
			if p := viper.GetString("policy"); p != "" {
				c.Engine.Policy = p
			}

			e, err := config.InitializeEngine(ctx, c, l)
			if err != nil {
				return err
			}

			class, id := args[0], args[1]
			fields := args[2:]

			rec := record.NewUnfetched(class, id)

			out := map[string]any{
				"class": class,
				"id":    id,
			}

			if len(fields) == 0 {
				if err := e.Materialize(ctx, rec); err != nil {
					return err
				}
				out["fields"] = renderFields(rec.Map())
			} else {
				resolved := make(map[string]any, len(fields))
				for _, f := range fields {
					v, err := e.Resolve(ctx, rec, f)
					if err != nil {
						return err
					}
					resolved[f] = renderValue(v)
				}
				out["fields"] = resolved
			}
			out["fetch_state"] = rec.State()

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	cmd.Flags().StringP("policy", "p", "", "Resolution policy (autofetch|raise); overrides the config file")
	viper.BindPFlag("policy", cmd.Flags().Lookup("policy"))
	viper.AutomaticEnv()
	viper.SetEnvPrefix("LAZYREF")

	return cmd
}

func renderFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = renderValue(v)
	}
	return out
}

// renderValue flattens engine values back into wire shapes for output.
func renderValue(v any) any {
	switch t := v.(type) {
	case *record.Reference:
		return t.Payload()
	case *record.Record:
		return map[string]any{
			"class":       t.Class(),
			"id":          t.ID(),
			"fetch_state": t.State(),
			"fields":      renderFields(t.Map()),
		}
	default:
		return v
	}
}

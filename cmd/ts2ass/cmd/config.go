package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const redacted = "[REDACTED]"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the configuration in YAML format: built-in defaults overridden by
TS2ASS_ environment variables. Redirect it to a file to create a template:

  ts2ass config dump > .ts2ass.yaml

Environment variables use the TS2ASS_ prefix and underscores for nesting.
Example: translate.api_key -> TS2ASS_TRANSLATE_API_KEY`,
	Args: cobra.NoArgs,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

// toMap converts a config struct to a map keyed by its mapstructure tags,
// formatting durations and hiding secrets.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		fieldType := typ.Field(i)

		key := fieldType.Tag.Get("mapstructure")
		if key == "" {
			key = fieldType.Name
		}

		switch value := field.Interface().(type) {
		case time.Duration:
			result[key] = value.String()
		case string:
			if fieldType.Tag.Get("masq") == "secret" && value != "" {
				result[key] = redacted
			} else {
				result[key] = value
			}
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(field.Interface())
			} else {
				result[key] = value
			}
		}
	}

	return result
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	cfg, cfgErr := config.Load(viper.New(), cfgFile)
	if cfgErr != nil {
		return errors.Wrap(cfgErr, "failed to load config")
	}

	yamlData, marshalErr := yaml.Marshal(toMap(cfg))
	if marshalErr != nil {
		return errors.Wrap(marshalErr, "failed to marshal config")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# ts2ass configuration")
	fmt.Fprintln(out, "#")
	fmt.Fprintln(out, "# Duration format: 500ms, 30s, 1m")
	fmt.Fprintln(out, "# Environment variable overrides: TS2ASS_OUTPUT_FORMAT, TS2ASS_TRANSLATE_API_KEY, etc.")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(yamlData))

	return nil
}

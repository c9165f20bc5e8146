package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	"github.com/vibast-solutions/ms-go-apikeys/app/entity"
	"github.com/vibast-solutions/ms-go-apikeys/app/repository"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"
	"github.com/vibast-solutions/ms-go-apikeys/config"
)

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apiKeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys in creation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, closeStore, err := newStoreForAPIKeyCommands()
		if err != nil {
			return err
		}
		defer closeStore()

		reveal, _ := cmd.Flags().GetBool("reveal")
		keys, err := service.NewAPIKeyService(store, nil).List(cmd.Context())
		if err != nil {
			return err
		}
		return printAPIKeys(cmd.OutOrStdout(), keys, reveal)
	},
}

var apiKeyCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an API key, generating its value unless --key is given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := newStoreForAPIKeyCommands()
		if err != nil {
			return err
		}
		defer closeStore()

		input, err := apiKeyInputFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		return createAPIKey(cmd.Context(), service.NewAPIKeyService(store, nil), cmd.OutOrStdout(), input)
	},
}

var apiKeyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := newStoreForAPIKeyCommands()
		if err != nil {
			return err
		}
		defer closeStore()

		return deleteAPIKey(cmd.Context(), service.NewAPIKeyService(store, nil), cmd.OutOrStdout(), args[0])
	},
}

var apiKeyValidateCmd = &cobra.Command{
	Use:   "validate <key>",
	Short: "Check whether a key value is known",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := newStoreForAPIKeyCommands()
		if err != nil {
			return err
		}
		defer closeStore()

		return validateAPIKey(cmd.Context(), service.NewValidationService(store, nil), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	apiKeyListCmd.Flags().Bool("reveal", false, "print full key values instead of masked ones")
	apiKeyCreateCmd.Flags().String("key", "", "key value to store (generated when empty)")
	apiKeyCreateCmd.Flags().String("description", "", "free-text description")
	apiKeyCreateCmd.Flags().Int64("usage-limit", 0, "usage limit to record (unlimited when not set)")

	apiKeyCmd.AddCommand(apiKeyListCmd)
	apiKeyCmd.AddCommand(apiKeyCreateCmd)
	apiKeyCmd.AddCommand(apiKeyDeleteCmd)
	apiKeyCmd.AddCommand(apiKeyValidateCmd)
	rootCmd.AddCommand(apiKeyCmd)
}

func newStoreForAPIKeyCommands() (repository.APIKeyStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := configureLogging(cfg); err != nil {
		return nil, nil, err
	}
	return newStore(cfg)
}

func apiKeyInputFromFlags(cmd *cobra.Command, name string) (dto.APIKeyInput, error) {
	key, _ := cmd.Flags().GetString("key")
	description, _ := cmd.Flags().GetString("description")
	input := dto.APIKeyInput{Name: name, Value: key, Description: description}

	if cmd.Flags().Changed("usage-limit") {
		limit, err := cmd.Flags().GetInt64("usage-limit")
		if err != nil {
			return dto.APIKeyInput{}, err
		}
		input.UsageLimit = &limit
	}
	return input, nil
}

func createAPIKey(ctx context.Context, apiKeyService service.APIKeyService, w io.Writer, input dto.APIKeyInput) error {
	key, err := apiKeyService.Create(ctx, input)
	if err != nil {
		if errors.Is(err, service.ErrAPIKeyConflict) {
			if input.Value == "" {
				return errors.New("generated API key value collided with an existing key, retry the command")
			}
			return fmt.Errorf("an API key with value %q already exists", input.Value)
		}
		return err
	}

	fmt.Fprintf(w, "id: %s\n", key.ID)
	fmt.Fprintf(w, "name: %s\n", key.Name)
	fmt.Fprintf(w, "api_key: %s\n", key.Value)
	fmt.Fprintf(w, "usage_limit: %s\n", formatUsageLimit(key))
	fmt.Fprintf(w, "created_at: %s\n", key.CreatedAt.Format(time.RFC3339))
	return nil
}

func deleteAPIKey(ctx context.Context, apiKeyService service.APIKeyService, w io.Writer, id string) error {
	if err := apiKeyService.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrAPIKeyNotFound) {
			return fmt.Errorf("API key %q not found", id)
		}
		return err
	}

	fmt.Fprintf(w, "deleted API key %s\n", id)
	return nil
}

func validateAPIKey(ctx context.Context, validationService service.ValidationService, w io.Writer, candidate string) error {
	result := validationService.Validate(ctx, candidate)
	if !result.Valid {
		return fmt.Errorf("%s (%s)", result.Message(), result.Reason)
	}

	fmt.Fprintf(w, "valid: true\nid: %s\n", result.KeyID)
	return nil
}

func printAPIKeys(w io.Writer, keys []*entity.APIKey, reveal bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKEY\tUSAGE\tLIMIT\tCREATED")
	for _, key := range keys {
		value := key.Value
		if !reveal {
			value = service.MaskForDisplay(value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			key.ID, key.Name, value, key.UsageCount, formatUsageLimit(key), key.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func formatUsageLimit(key *entity.APIKey) string {
	if !key.UsageLimit.Valid {
		return "unlimited"
	}
	return strconv.FormatInt(key.UsageLimit.Int64, 10)
}

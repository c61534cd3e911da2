package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deppfellow/anime-api/internal/client"
	"github.com/deppfellow/anime-api/internal/config"
	"github.com/deppfellow/anime-api/internal/lib/utils"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call a running anime-api server",
	Long: `Call a running anime-api server and print the JSON result.

The server URL and credentials default to ANIME_CLIENT_URL,
ANIME_CLIENT_USERNAME and ANIME_CLIENT_PASSWORD.`,
}

func newClient(cmd *cobra.Command) *client.Client {
	baseURL, _ := cmd.Flags().GetString("url")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	return client.New(baseURL, nil, username, password)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of animes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		sort, _ := cmd.Flags().GetString("sort")

		result, err := newClient(cmd).List(cmd.Context(), page, size, sort)
		if err != nil {
			return err
		}
		return utils.PrintJSON(cmd.OutOrStdout(), result)
	},
}

var clientAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every anime",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		animes, err := newClient(cmd).ListAll(cmd.Context())
		if err != nil {
			return err
		}
		return utils.PrintJSON(cmd.OutOrStdout(), animes)
	},
}

var clientGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get an anime by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		anime, err := newClient(cmd).Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return utils.PrintJSON(cmd.OutOrStdout(), anime)
	},
}

var clientFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find animes by exact name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		animes, err := newClient(cmd).FindByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return utils.PrintJSON(cmd.OutOrStdout(), animes)
	},
}

var clientCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an anime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anime, err := newClient(cmd).Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return utils.PrintJSON(cmd.OutOrStdout(), anime)
	},
}

var clientReplaceCmd = &cobra.Command{
	Use:   "replace <id> <name>",
	Short: "Replace the name of an anime",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return newClient(cmd).Replace(cmd.Context(), id, args[1])
	},
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an anime (ADMIN only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return newClient(cmd).Delete(cmd.Context(), id)
	},
}

func init() {
	flags := clientCmd.PersistentFlags()
	flags.String("url", config.Getenv("ANIME_CLIENT_URL", client.DefaultBaseURL), "server base URL")
	flags.String("username", config.Getenv("ANIME_CLIENT_USERNAME", ""), "basic auth username")
	flags.String("password", config.Getenv("ANIME_CLIENT_PASSWORD", ""), "basic auth password")

	clientListCmd.Flags().Int("page", 0, "zero-based page number")
	clientListCmd.Flags().Int("size", 0, "page size (server default when 0)")
	clientListCmd.Flags().String("sort", "", `sort order, e.g. "name,desc"`)

	clientCmd.AddCommand(
		clientListCmd,
		clientAllCmd,
		clientGetCmd,
		clientFindCmd,
		clientCreateCmd,
		clientReplaceCmd,
		clientDeleteCmd,
	)
	rootCmd.AddCommand(clientCmd)
}

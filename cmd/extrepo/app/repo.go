package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/service"
)

func newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repo",
		Aliases: []string{"repos"},
		Short:   "Manage extension repositories",
	}

	cmd.AddCommand(newRepoAddCmd())
	cmd.AddCommand(newRepoListCmd())
	cmd.AddCommand(newRepoRemoveCmd())
	cmd.AddCommand(newRepoRefreshCmd())
	cmd.AddCommand(newRepoRenameCmd())
	return cmd
}

func newRepoAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <index-url>",
		Short: "Add a repository by the URL of its index.min.json",
		Long: `Add a repository. The repository descriptor (repo.json) next to the index
is fetched to learn its name and signing key fingerprint.

A repository whose fingerprint is already used by another stored repository is
rejected unless --replace is given, in which case it takes over that entry.`,
		Args: cobra.ExactArgs(1),
		RunE: runRepoAdd,
	}
	cmd.Flags().Bool("replace", false, "Replace the repository holding the same signing key")
	return cmd
}

func runRepoAdd(cmd *cobra.Command, args []string) error {
	replace, err := cmd.Flags().GetBool("replace")
	if err != nil {
		return fmt.Errorf("failed to get replace flag: %w", err)
	}

	components, _, closeFn, err := openLocal(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	svc := components.RepoService
	result := svc.Create(cmd.Context(), args[0])
	if result.Outcome == service.OutcomeDuplicateFingerprint && replace {
		if err := svc.Replace(cmd.Context(), *result.New); err != nil {
			return err
		}
		result = service.CreateResult{Outcome: service.OutcomeSuccess, Repo: result.New}
	}
	return reportCreateResult(cmd, result)
}

func reportCreateResult(cmd *cobra.Command, result service.CreateResult) error {
	out := cmd.OutOrStdout()
	switch result.Outcome {
	case service.OutcomeSuccess:
		_, err := fmt.Fprintf(out, "Added %s (%s)\n", result.Repo.DisplayName(), result.Repo.BaseURL)
		return err
	case service.OutcomeDuplicateFingerprint:
		return fmt.Errorf("%s: %s already uses signing key %s (rerun with --replace to take it over)",
			result.Outcome, result.Existing.BaseURL, result.Existing.SigningKeyFingerprint)
	default:
		if result.Err != nil {
			return fmt.Errorf("%s: %w", result.Outcome, result.Err)
		}
		return errors.New(result.Outcome.String())
	}
}

func newRepoListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := getFormat(cmd)
			if err != nil {
				return err
			}

			components, _, closeFn, err := openLocal(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			repos, err := components.RepoService.List(cmd.Context())
			if err != nil {
				return err
			}
			return printRepos(cmd, format, repos)
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func printRepos(cmd *cobra.Command, format string, repos []repo.ExtensionRepo) error {
	if format == formatJSON {
		return writeJSON(cmd.OutOrStdout(), repos)
	}
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, []string{r.DisplayName(), r.BaseURL, r.SigningKeyFingerprint})
	}
	return writeTable(cmd.OutOrStdout(), []string{"NAME", "BASE URL", "FINGERPRINT"}, rows)
}

func newRepoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <base-url>",
		Aliases: []string{"rm"},
		Short:   "Remove a repository",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, closeFn, err := openLocal(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			return components.RepoService.Delete(cmd.Context(), args[0])
		},
	}
}

func newRepoRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refetch every repository descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			components, _, closeFn, err := openLocal(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			components.RepoService.RefreshAll(cmd.Context())
			count, err := components.RepoService.Count(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %d repositories\n", count)
			return err
		},
	}
}

func newRepoRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <base-url> <new-index-url>",
		Short: "Move a repository to a new index URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, closeFn, err := openLocal(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			return reportCreateResult(cmd, components.RepoService.Rename(cmd.Context(), args[0], args[1]))
		},
	}
}

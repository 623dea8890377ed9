package app

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kanade-dev/extrepo/internal/diskutil"
	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/filtering"
	"github.com/kanade-dev/extrepo/internal/httpclient"
)

func newExtensionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extensions",
		Aliases: []string{"ext"},
		Short:   "Browse the extensions published by stored repositories",
	}

	cmd.AddCommand(newExtensionsListCmd())
	cmd.AddCommand(newExtensionsUpdatesCmd())
	cmd.AddCommand(newExtensionsDownloadCmd())
	return cmd
}

func newExtensionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := getFormat(cmd)
			if err != nil {
				return err
			}

			components, cfg, closeFn, err := openLocal(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			filter, err := filtering.FromQuery(cfg.GetExtensionFilter(), listFilterQuery(cmd))
			if err != nil {
				return err
			}

			found, err := components.Finder.FindExtensions(cmd.Context())
			if err != nil {
				return err
			}
			return printExtensions(cmd, format, filtering.NewDefaultFilterService().Apply(cmd.Context(), found, filter))
		},
	}
	addFormatFlag(cmd)
	cmd.Flags().StringSlice("lang", nil, "Only list extensions serving these languages")
	cmd.Flags().StringSlice("pkg", nil, "Only list packages matching these glob patterns")
	cmd.Flags().Bool("hide-nsfw", false, "Hide NSFW extensions")
	return cmd
}

// listFilterQuery expresses the list filter flags as filter query parameters
func listFilterQuery(cmd *cobra.Command) url.Values {
	q := url.Values{}
	if langs, _ := cmd.Flags().GetStringSlice("lang"); len(langs) > 0 {
		q[filtering.QueryLang] = langs
	}
	if pkgs, _ := cmd.Flags().GetStringSlice("pkg"); len(pkgs) > 0 {
		q[filtering.QueryPkg] = pkgs
	}
	if hide, _ := cmd.Flags().GetBool("hide-nsfw"); hide {
		q.Set(filtering.QueryNSFW, "false")
	}
	return q
}

func newExtensionsUpdatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updates",
		Short: "List updates for installed extensions",
		Long: `Compare installed extensions, described by a YAML manifest, with the
available ones. Example manifest:

  - name: "Tachiyomi: MangaDex"
    pkgName: eu.kanade.tachiyomi.extension.all.mangadex
    versionName: 1.4.190
    versionCode: 190
    repoUrl: https://example.org/repo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := getFormat(cmd)
			if err != nil {
				return err
			}
			manifest, err := cmd.Flags().GetString("installed")
			if err != nil {
				return fmt.Errorf("failed to get installed flag: %w", err)
			}
			installed, err := extensions.LoadInstalled(manifest)
			if err != nil {
				return err
			}

			components, _, closeFn, err := openLocal(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			updates, err := components.Finder.CheckForUpdates(cmd.Context(), installed, nil)
			if err != nil {
				return err
			}
			return printExtensions(cmd, format, updates)
		},
	}
	addFormatFlag(cmd)
	cmd.Flags().String("installed", "", "Path to the installed extensions manifest (YAML)")
	_ = cmd.MarkFlagRequired("installed")
	return cmd
}

func newExtensionsDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <pkg-name>",
		Short: "Download the APK of an available extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cmd.Flags().GetString("dir")
			if err != nil {
				return fmt.Errorf("failed to get dir flag: %w", err)
			}

			components, cfg, closeFn, err := openLocal(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			found, err := components.Finder.FindExtensions(cmd.Context())
			if err != nil {
				return err
			}

			for _, ext := range found {
				if ext.PkgName != args[0] {
					continue
				}
				client := httpclient.NewDefaultClient(downloadTimeout(cfg.GetHTTPTimeout()))
				path, err := extensions.NewDownloader(client).Download(cmd.Context(), ext, dir)
				if err != nil {
					return err
				}
				return reportDownload(cmd.OutOrStdout(), ext, path, dir)
			}
			return fmt.Errorf("extension %s is not available from any stored repository", args[0])
		},
	}
	cmd.Flags().String("dir", ".", "Directory to save the APK in")
	return cmd
}

// reportDownload prints where ext was saved and how much space dir now takes
func reportDownload(w io.Writer, ext extensions.Available, path, dir string) error {
	size, err := diskutil.DirectorySize(dir)
	if err != nil {
		return fmt.Errorf("failed to measure %s: %w", dir, err)
	}
	_, err = fmt.Fprintf(w, "Saved %s %s to %s (%s now holds %d bytes)\n", ext.Name, ext.VersionName, path, dir, size)
	return err
}

// downloadTimeout leaves APK transfers more room than index requests
func downloadTimeout(base time.Duration) time.Duration {
	const minDownloadTimeout = 5 * time.Minute
	return max(base, minDownloadTimeout)
}

func printExtensions(cmd *cobra.Command, format string, list []extensions.Available) error {
	if format == formatJSON {
		return writeJSON(cmd.OutOrStdout(), list)
	}
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			e.Name,
			e.PkgName,
			e.VersionName,
			strconv.FormatInt(e.VersionCode, 10),
			e.Lang,
			strconv.FormatBool(e.IsNSFW),
			e.RepoURL,
		})
	}
	return writeTable(cmd.OutOrStdout(),
		[]string{"NAME", "PACKAGE", "VERSION", "CODE", "LANG", "NSFW", "REPO"}, rows)
}

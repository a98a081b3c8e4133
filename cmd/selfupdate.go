package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository releases are fetched from.
var githubRepoSlug = "jstestctl/jstestctl"

// releaseUpdater finds the newest release and installs it.
type releaseUpdater interface {
	// Latest returns the newest release version and whether it is newer than current.
	Latest(ctx context.Context, current string) (version string, newer bool, err error)
	// Apply replaces the running binary with the release found by Latest.
	Apply(ctx context.Context) error
}

// newUpdater is replaced in tests.
var newUpdater = func() releaseUpdater {
	return &githubUpdater{slug: githubRepoSlug}
}

type githubUpdater struct {
	slug   string
	latest *selfupdate.Release
}

func (u *githubUpdater) Latest(ctx context.Context, current string) (string, bool, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(u.slug))
	if err != nil {
		return "", false, fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return "", false, fmt.Errorf("latest version for %s/%s could not be found from github repository", runtime.GOOS, runtime.GOARCH)
	}
	u.latest = latest
	return latest.Version(), !latest.LessOrEqual(current), nil
}

func (u *githubUpdater) Apply(ctx context.Context) error {
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, u.latest.AssetURL, u.latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}
	return nil
}

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update jstestctl to the latest version",
		Long: `Checks for the latest release of jstestctl on GitHub and
replaces the running binary with it when it is newer.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}

	ctx := context.Background()
	var out io.Writer = os.Stdout
	if cmd != nil {
		out = cmd.OutOrStdout()
		if cmd.Context() != nil {
			ctx = cmd.Context()
		}
	}

	updater := newUpdater()
	latest, newer, err := updater.Latest(ctx, currentVersion)
	if err != nil {
		return err
	}
	if !newer {
		fmt.Fprintf(out, "Current version (%s) is the latest\n", currentVersion)
		return nil
	}

	if err := updater.Apply(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully updated to version %s\n", latest)
	return nil
}

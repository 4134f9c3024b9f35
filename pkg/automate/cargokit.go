package automate

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/cunarist/rinf/automate/pkg"
)

const maxListedChanges = 5

func updateCargokit(ctx context.Context, env *Env) error {
	cfg := env.Config.Cargokit
	pkg.PrintTask(env.out(), "Updating CargoKit...")

	if env.Config.Git.CheckClean {
		modified, err := pkg.ModifiedFiles(env.Root)
		if err != nil {
			return err
		}

		if len(modified) > 0 {
			listed := modified
			if len(listed) > maxListedChanges {
				listed = listed[:maxListedChanges]
			}
			return eris.Errorf("Working tree has uncommitted changes (%s); commit or stash them before pulling %s",
				strings.Join(listed, ", "), cfg.Prefix)
		}
	}

	return env.run(ctx, env.Root, "git", "subtree", "pull", "--prefix", cfg.Prefix, cfg.Remote, cfg.Branch)
}

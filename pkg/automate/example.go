package automate

import (
	"context"

	"github.com/cunarist/rinf/automate/pkg"
)

func prepareExampleApp(ctx context.Context, env *Env) error {
	pkg.PrintTask(env.out(), "Generating example app bindings...")
	return env.run(ctx, env.Path("flutter_package", "example"), "rinf", "gen")
}

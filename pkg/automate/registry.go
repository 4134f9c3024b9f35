// Package automate implements the maintenance procedures of the rinf repository.
package automate

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/cunarist/rinf/automate/pkg"
)

const (
	MissingMessage = "Automation option is not provided"
	UnknownMessage = "No such option for automation is available"
)

// Procedure is a named maintenance task
type Procedure struct {
	Name  string
	Short string
	// Tools lists the programs which have to be available in PATH
	Tools []string
	Run   func(ctx context.Context, env *Env) error
}

// Selection describes the outcome of Lookup
type Selection int

const (
	Selected Selection = iota
	Missing
	Unknown
)

// Procedures returns all known procedures in a stable order
func Procedures() []Procedure {
	return []Procedure{
		{
			Name:  "update-cargokit",
			Short: "Pulls the vendored cargokit subtree from upstream",
			Tools: []string{"git"},
			Run:   updateCargokit,
		},
		{
			Name:  "prepare-test-app",
			Short: "Scaffolds test_app against the local framework",
			Tools: testApp.tools(),
			Run: func(ctx context.Context, env *Env) error {
				return prepareApp(ctx, env, testApp)
			},
		},
		{
			Name:  "prepare-user-app",
			Short: "Scaffolds user_app against the published framework",
			Tools: userApp.tools(),
			Run: func(ctx context.Context, env *Env) error {
				return prepareApp(ctx, env, userApp)
			},
		},
		{
			Name:  "prepare-example-app",
			Short: "Regenerates the bindings of the bundled example app",
			Tools: []string{"rinf"},
			Run:   prepareExampleApp,
		},
	}
}

// Lookup selects a procedure by the first positional argument. Only exact matches count.
func Lookup(args []string) (Procedure, Selection) {
	if len(args) < 1 {
		return Procedure{}, Missing
	}

	for _, proc := range Procedures() {
		if proc.Name == args[0] {
			return proc, Selected
		}
	}

	return Procedure{}, Unknown
}

// Execute checks that all required tools are available and runs the procedure
func (p Procedure) Execute(ctx context.Context, env *Env) error {
	logger := pkg.Log(ctx).With().Str("procedure", p.Name).Logger()
	ctx = pkg.WithLogger(ctx, &logger)

	for _, tool := range p.Tools {
		if err := env.Runner.LookPath(tool); err != nil {
			return eris.Wrapf(err, "%s requires %s", p.Name, tool)
		}
	}

	logger.Debug().Str("root", env.Root).Msg("Starting")
	if err := p.Run(ctx, env); err != nil {
		return eris.Wrapf(err, "%s failed", p.Name)
	}

	logger.Info().Msg("Done")
	return nil
}

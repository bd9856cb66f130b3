// Command roadnavvis shows a world file's simulation in a window.
package main

import (
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	log "github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/roadnav/internal/config"
	"github.com/elektrokombinacija/roadnav/internal/sim"
	"github.com/elektrokombinacija/roadnav/internal/vis"
)

func main() {
	path := "layouts/city.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	world, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	build := func() (*sim.Simulator, error) {
		cfg := world.SimulationConfig()
		cfg.Logger = log.StandardLogger()
		return world.Build(cfg)
	}

	application, err := vis.NewApp(build)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("roadnav - "+path),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// arenactl runs pairing operations offline: feed it a roster sheet and it
// prints the generated round without a running daemon.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/pairing"
	"github.com/fencerfight/tourney/src/infra/peer"
	"github.com/fencerfight/tourney/src/infra/sheet"
)

func main() {
	var rosterPath string
	var sameGender bool
	var accumulating bool
	var seed int64

	app := &cli.App{
		Name:  "arenactl",
		Usage: "Offline pairing and roster tooling for tournament sheets",
		Commands: []*cli.Command{
			{
				Name:  "pairs",
				Usage: "Generate a round from a roster sheet and print it as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "roster",
						Aliases:     []string{"r"},
						Usage:       "Path to the roster CSV",
						Destination: &rosterPath,
						Required:    true,
					},
					&cli.BoolFlag{
						Name:        "same-gender",
						Usage:       "Pair fighters only within their gender group",
						Destination: &sameGender,
					},
					&cli.BoolFlag{
						Name:        "accumulating",
						Usage:       "Use score-accumulating pairing instead of elimination",
						Destination: &accumulating,
					},
					&cli.Int64Flag{
						Name:        "seed",
						Usage:       "Seed for deterministic shuffling (0 uses the clock)",
						Destination: &seed,
					},
				},
				Action: func(cCtx *cli.Context) error {
					roster, err := readRoster(rosterPath)
					if err != nil {
						return err
					}
					if seed == 0 {
						seed = time.Now().UnixNano()
					}
					rng := rand.New(rand.NewSource(seed))
					pairs := pairing.Generate(roster, sameGender, accumulating, rng)
					return sheet.ExportLedger(os.Stdout, [][]fighter.Pair{pairs})
				},
			},
			{
				Name:  "invite",
				Usage: "Encode a sync server address and token into a shareable invite code",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Websocket sync endpoint, e.g. ws://desk.local:8080/v1/sync/ws",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Shared sync token",
					},
				},
				Action: func(cCtx *cli.Context) error {
					code, err := peer.EncodeSignal(peer.Invite{
						URL:   cCtx.String("url"),
						Token: cCtx.String("token"),
					})
					if err != nil {
						return err
					}
					fmt.Println(code)
					return nil
				},
			},
			{
				Name:  "roster",
				Usage: "Print the deduplicated fighter roster of a sheet",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "roster",
						Aliases:     []string{"r"},
						Usage:       "Path to the roster CSV",
						Destination: &rosterPath,
						Required:    true,
					},
				},
				Action: func(cCtx *cli.Context) error {
					roster, err := readRoster(rosterPath)
					if err != nil {
						return err
					}
					for _, f := range roster {
						fmt.Printf("%s\t%s\n", f.ID, f.Name)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func readRoster(path string) ([]fighter.Participant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	pairs, err := sheet.ImportRound(file)
	if err != nil {
		return nil, err
	}
	return sheet.Roster(pairs), nil
}

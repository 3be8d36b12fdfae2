package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v2"

	"github.com/kaotoio/kaoto/internal/catalog"
	"github.com/kaotoio/kaoto/pkg/api"
	"github.com/kaotoio/kaoto/pkg/path"
)

var (
	ErrNoFlows      = errors.New("document holds no flows")
	ErrPathRequired = errors.New("a --path is required")
	ErrStepRequired = errors.New("a --step is required")
	ErrNoValue      = errors.New("nothing at path")
)

var flowFlag = &cli.StringFlag{
	Name:    "flow",
	Aliases: []string{"f"},
	Usage:   "Flow to work on (defaults to the first one)",
}

var regenerateCommand = &cli.Command{
	Name:      "regenerate",
	Usage:     "Regenerate identifiers and print every flow with its index",
	ArgsUsage: "[file]",
	Action: func(c *cli.Context) error {
		return withFlows(c, func(s *session) error {
			return writeJSON(c, s.flows.Snapshot())
		})
	},
}

var indexCommand = &cli.Command{
	Name:      "index",
	Usage:     "Print the nested step records of one flow",
	ArgsUsage: "[file]",
	Flags:     []cli.Flag{flowFlag},
	Action: func(c *cli.Context) error {
		return withFlows(c, func(s *session) error {
			id, err := selectFlow(c, s)
			if err != nil {
				return err
			}
			recs, err := s.flows.NestedSteps(id)
			if err != nil {
				return err
			}
			return writeJSON(c, recs)
		})
	},
}

var getCommand = &cli.Command{
	Name:      "get",
	Usage:     "Print the value found at a path inside one flow's steps",
	ArgsUsage: "[file]",
	Flags: []cli.Flag{
		flowFlag,
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "Dotted path such as 1.branches.0.steps.0",
		},
	},
	Action: func(c *cli.Context) error {
		if c.String("path") == "" {
			return ErrPathRequired
		}
		p := path.Parse(c.String("path"))
		return withFlows(c, func(s *session) error {
			id, err := selectFlow(c, s)
			if err != nil {
				return err
			}
			f, err := s.flows.Flow(id)
			if err != nil {
				return err
			}
			doc, err := json.Marshal(f.Steps)
			if err != nil {
				return err
			}
			res := gjson.GetBytes(doc, p.GJSON())
			if !res.Exists() {
				return fmt.Errorf("%w: %s", ErrNoValue, p)
			}
			_, err = fmt.Fprintln(c.App.Writer, res.Raw)
			return err
		})
	},
}

var deleteCommand = &cli.Command{
	Name:      "delete",
	Usage:     "Delete a step and its branches, then print the flow",
	ArgsUsage: "[file]",
	Flags: []cli.Flag{
		flowFlag,
		&cli.StringFlag{
			Name:    "step",
			Aliases: []string{"s"},
			Usage:   "Identifier of the step to delete",
		},
	},
	Action: func(c *cli.Context) error {
		stepID := api.StepID(c.String("step"))
		if stepID == "" {
			return ErrStepRequired
		}
		return withFlows(c, func(s *session) error {
			id, err := selectFlow(c, s)
			if err != nil {
				return err
			}
			if err := s.flows.DeleteStep(id, stepID); err != nil {
				return err
			}
			f, err := s.flows.Flow(id)
			if err != nil {
				return err
			}
			return writeJSON(c, f)
		})
	},
}

// withFlows loads the flows named by the command's argument into a fresh
// session and runs fn against it
func withFlows(c *cli.Context, fn func(*session) error) error {
	data, err := readInput(c)
	if err != nil {
		return err
	}
	loaded, err := catalog.ParseFlows(data)
	if err != nil {
		return err
	}

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	for i := range loaded {
		if loaded[i].DSL == "" {
			loaded[i].DSL = s.cfg.DefaultDSL
		}
	}
	if err := s.flows.SetFlows(loaded); err != nil {
		return err
	}
	return fn(s)
}

func selectFlow(c *cli.Context, s *session) (api.FlowID, error) {
	if id := c.String("flow"); id != "" {
		return api.FlowID(id), nil
	}
	all := s.flows.Flows()
	if len(all) == 0 {
		return "", ErrNoFlows
	}
	return all[0].ID, nil
}

func readInput(c *cli.Context) ([]byte, error) {
	name := c.Args().First()
	if name == "" || name == "-" {
		return io.ReadAll(c.App.Reader)
	}
	return os.ReadFile(name)
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

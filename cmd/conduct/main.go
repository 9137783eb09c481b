package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/conduct/internal/autofix"
	"github.com/jorge-barreto/conduct/internal/config"
	"github.com/jorge-barreto/conduct/internal/docs"
	"github.com/jorge-barreto/conduct/internal/doctor"
	"github.com/jorge-barreto/conduct/internal/flow"
	"github.com/jorge-barreto/conduct/internal/graph"
	"github.com/jorge-barreto/conduct/internal/llm"
	"github.com/jorge-barreto/conduct/internal/project"
	"github.com/jorge-barreto/conduct/internal/scaffold"
	"github.com/jorge-barreto/conduct/internal/stage"
	"github.com/jorge-barreto/conduct/internal/tools"
	"github.com/jorge-barreto/conduct/internal/ux"
)

func main() {
	app := &cli.Command{
		Name:  "conduct",
		Usage: "LLM code-generation pipeline orchestrator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "conduct.yaml", Usage: "Path to run configuration"},
		},
		Commands: []*cli.Command{
			runCmd(),
			statusCmd(),
			projectsCmd(),
			doctorCmd(),
			initCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the pipeline for a goal",
		ArgsUsage: "<goal...>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-iterations", Usage: "Override the iteration budget"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			goal := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if goal == "" {
				return fmt.Errorf("goal argument is required")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if n := cmd.Int("max-iterations"); n > 0 {
				cfg.MaxIterations = int(n)
			}

			mgr := &project.Manager{Root: cfg.Workspace}
			proj, err := mgr.Create(goal, goal)
			if err != nil {
				return err
			}

			tb := &tools.Toolbox{Python: cfg.Python}
			rt := &stage.Runtime{
				Gen:     llm.New(cfg.Model, os.Getenv(cfg.APIKeyEnv), cfg.BaseURL),
				Exec:    tb,
				Proc:    tb,
				Probe:   tb,
				FS:      tb,
				Patches: &tools.GitApplier{Root: proj.Dir},
				Fixer:   &autofix.Loop{Proc: tb, FS: tb},
			}

			st := flow.New(goal, proj.Dir, cfg.MaxIterations)
			st.Ports = flow.Ports{Backend: cfg.Ports.Backend, Frontend: cfg.Ports.Frontend}
			proj.Meta.RunID = st.RunID
			if err := proj.SaveMetadata(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			ux.RunHeader(st.RunID, goal)
			start := time.Now()

			d := graph.New(stage.New(rt))
			d.Cap = cfg.StepCap
			runErr := d.Run(ctx, st)

			summary := buildSummary(st)
			if runErr != nil {
				summary.Aborted = true
				summary.AbortReason = runErr.Error()
				proj.Meta.Status = "aborted"
			} else {
				proj.Meta.Status = "completed"
			}
			if err := project.WriteSummary(proj.Dir, summary); err != nil {
				fmt.Fprintf(os.Stderr, "warning: writing summary: %v\n", err)
			}
			if err := proj.SaveMetadata(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: saving metadata: %v\n", err)
			}

			if runErr != nil {
				if errors.Is(runErr, graph.ErrStepLimit) {
					return fmt.Errorf("run aborted: %w", runErr)
				}
				return runErr
			}
			ux.Done(st.Iteration, time.Since(start))
			fmt.Printf("%sProject:%s %s\n", ux.Bold, ux.Reset, proj.Dir)
			return nil
		},
	}
}

// buildSummary condenses the terminal run record into the persisted summary.
func buildSummary(st *flow.State) *project.Summary {
	s := &project.Summary{
		RunID:           st.RunID,
		Goal:            st.Goal,
		Iterations:      st.Iteration,
		ProjectKind:     string(st.ProjectKind),
		ReviewStatus:    string(st.ReviewStatus()),
		TestExitCode:    st.TestOutput.ExitCode,
		TestsRan:        st.TestOutput.Ran,
		ServicesHealthy: st.ServicesStatus.Healthy,
		FinishedAt:      time.Now().UTC(),
	}
	if urls, ok := st.Control.PreviewInfo["urls"].(map[string]any); ok {
		s.PreviewURLs = map[string]string{}
		for name, u := range urls {
			if text, ok := u.(string); ok {
				s.PreviewURLs[name] = text
			}
		}
	}
	if files, ok := st.Control.PreviewInfo["generated_files"].(string); ok && files != "" {
		s.FilesCreated = strings.Split(files, "\n")
	}
	return s
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the last run summary for a project",
		ArgsUsage: "[project-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dir := cmd.Args().First()
			if dir == "" {
				mgr := &project.Manager{Root: cfg.Workspace}
				dir, err = mgr.Current()
				if err != nil {
					return err
				}
			}

			summary, err := project.LoadSummary(dir)
			if err != nil {
				return fmt.Errorf("no run summary in %s: %w", dir, err)
			}
			ux.RenderStatus(dir, summary)

			if scripts, err := (&tools.Toolbox{}).PackageScripts(dir); err == nil {
				printScripts(scripts)
			}
			return nil
		},
	}
}

// printScripts reports the build files and npm scripts a project exposes.
func printScripts(scripts tools.ProjectScripts) {
	var surface []string
	if scripts.Requirements {
		surface = append(surface, "requirements.txt")
	}
	if scripts.PyProject {
		surface = append(surface, "pyproject.toml")
	}
	if scripts.Dockerfile {
		surface = append(surface, "Dockerfile")
	}
	for name := range scripts.NPMScripts {
		surface = append(surface, "npm run "+name)
	}
	if len(surface) == 0 {
		return
	}
	sort.Strings(surface)
	fmt.Printf("%sRunnable:%s %s\n", ux.Bold, ux.Reset, strings.Join(surface, ", "))
}

func projectsCmd() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "Manage generated project directories",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List project directories, newest first",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					infos, err := (&project.Manager{Root: cfg.Workspace}).List()
					if err != nil {
						return err
					}
					if len(infos) == 0 {
						fmt.Println("No projects yet.")
						return nil
					}
					for _, info := range infos {
						fmt.Printf("%s%s%s  %-30s %4d files  %8d bytes\n",
							ux.Dim, info.CreatedAt.Format("2006-01-02 15:04"), ux.Reset,
							info.Name, info.Files, info.SizeBytes)
						fmt.Printf("  %s%s%s\n", ux.Dim, info.Dir, ux.Reset)
					}
					return nil
				},
			},
			{
				Name:  "cleanup",
				Usage: "Delete all but the newest projects",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "keep", Usage: "How many projects to keep (default from config)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					keep := int(cmd.Int("keep"))
					if keep == 0 {
						keep = cfg.KeepProjects
					}
					removed, err := (&project.Manager{Root: cfg.Workspace}).Cleanup(keep)
					if err != nil {
						return err
					}
					fmt.Printf("Removed %d project(s), kept the newest %d.\n", removed, keep)
					return nil
				},
			},
			{
				Name:      "switch",
				Usage:     "Set the current project for status",
				ArgsUsage: "<project-dir>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					dir := cmd.Args().First()
					if dir == "" {
						return fmt.Errorf("project-dir argument is required")
					}
					if err := (&project.Manager{Root: cfg.Workspace}).Switch(dir); err != nil {
						return err
					}
					fmt.Printf("Current project: %s\n", dir)
					return nil
				},
			},
		},
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a starter conduct.yaml in the current directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(cwd)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation topics",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Printf("%sTopics%s\n", ux.Bold, ux.Reset)
				for _, topic := range docs.All() {
					fmt.Printf("  %-12s %s\n", topic.Name, topic.Summary)
				}
				fmt.Printf("\nRun %sconduct docs <topic>%s to read one.\n", ux.Bold, ux.Reset)
				return nil
			}
			topic, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Println(topic.Content)
			return nil
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the environment the pipeline depends on",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !doctor.Render(doctor.RunChecks(cfg)) {
				return fmt.Errorf("environment checks failed")
			}
			return nil
		},
	}
}

package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with conduct",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "Config file schema, fields, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "pipeline",
		Title:   "Pipeline Model",
		Summary: "Stages, the conductor, budgets, and the auto-fix loop",
		Content: topicPipeline,
	},
	{
		Name:    "projects",
		Title:   "Project Directories",
		Summary: "Where generated code lands and how to manage it",
		Content: topicProjects,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a workspace:

    cd your-workspace
    conduct init

   This creates conduct.yaml with commented defaults.

2. Export the generation API key and check the environment:

    export OPENAI_API_KEY=sk-...
    conduct doctor

3. Run a pipeline:

    conduct run "build a todo list API with a react frontend"

4. Inspect the result:

    conduct status
    conduct projects list

CLI Flags
---------

  conduct run <goal...>                 Run the pipeline for a goal
  conduct run --max-iterations N ...    Override the iteration budget
  conduct status [project-dir]          Show the last run summary
  conduct projects list                 List generated project dirs
  conduct projects cleanup [--keep N]   Delete all but the newest N
  conduct projects switch <dir>         Set the current project
  conduct doctor                        Check the environment
  conduct init                          Scaffold conduct.yaml
  conduct docs [topic]                  Show documentation
`

const topicConfig = `Configuration Reference
=======================

Runs are configured in conduct.yaml. Every field has a default; a missing
file is equivalent to an empty one.

  model            string  Chat-completions model (default gpt-4o-mini).
  api-key-env      string  Env var holding the API key (default OPENAI_API_KEY).
  base-url         string  Chat-completions endpoint URL.
  workspace        string  Root for generated_projects/ (default ".").
  max-iterations   int     Conductor budget per run (default 5).
  step-cap         int     Total graph step bound (default 30). Must be
                           at least max-iterations.
  python           string  Interpreter for tests and entry points.
  ports.backend    int     Default backend port (default 8000).
  ports.frontend   int     Default frontend port (default 3000).
  keep-projects    int     Projects kept by cleanup (default 5).
`

const topicPipeline = `Pipeline Model
==============

A run walks a fixed stage graph:

  plan -> design -> implement -> conductor

After every stage the conductor inspects the run record and picks the next
action: generate code (implement or fix), author and run tests, start
service checks, review, or preview. The run ends at the preview stage.

Budgets
-------

Two independent bounds end a run:

  max-iterations   Counted once per conductor decision. When exhausted the
                   conductor forces a preview of the best effort so far.
  step-cap         Counts every graph step. Exceeding it aborts the run;
                   this guards against routing loops and is an error,
                   unlike the budget preview.

Every eighth iteration the conductor flags a checkpoint in its decision
output.

Auto-Fix Loop
-------------

When the generated project has a runnable entry point (main.py, app.py, or
backend/main.py), the runner first executes it, up to 3 attempts. Missing
dependencies are pinned into requirements.txt; two known missing-import
errors are patched into the source. Anything else is left for the fix
stage with the error recorded on the run record.

Full-Stack Projects
-------------------

A design mentioning frontend/backend (or a goal naming api, app, fastapi,
or react) classifies the project as full-stack. Full-stack runs add
service port checks before tests, probe /health and / endpoints during
test runs, and refuse review approval until code generation is confirmed.
`

const topicProjects = `Project Directories
===================

Each run creates a directory under <workspace>/generated_projects/ named

    <yyyymmdd>_<hhmmss>_<cleaned-goal>_<uuid8>

with subdirectories backend/, frontend/, database/, docs/, tests/, and
scripts/. Generated code is written there by the diff applier.

Bookkeeping files:

  .project_metadata.json   Name, goal, run id, and status.
  .conduct/summary.yaml    Final run summary, rendered by 'conduct status'.

'conduct projects cleanup' deletes all but the newest N directories.
'conduct projects switch' selects which project 'conduct status' reads.
`

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type PushTrigger struct {
	Branches []string `yaml:"branches,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

type Trigger struct {
	Push PushTrigger `yaml:"push,omitempty"`
}

type Args map[string]interface{}

type Step struct {
	Name string `yaml:"name,omitempty"`
	If   string `yaml:"if,omitempty"`
	Uses string `yaml:"uses,omitempty"`
	ID   string `yaml:"id,omitempty"`
	Run  string `yaml:"run,omitempty"`
	With Args   `yaml:"with,omitempty"`
}

type Service struct {
	Image   string            `yaml:"image"`
	Env     map[string]string `yaml:"env,omitempty"`
	Ports   []string          `yaml:"ports,omitempty"`
	Options string            `yaml:"options,omitempty"`
}

type Job struct {
	RunsOn   string             `yaml:"runs-on"`
	Needs    []string           `yaml:"needs,omitempty"`
	Env      map[string]string  `yaml:"env,omitempty"`
	Services map[string]Service `yaml:"services,omitempty"`
	Steps    []Step             `yaml:"steps"`
}

type Workflow struct {
	Name string         `yaml:"name"`
	On   Trigger        `yaml:"on,omitempty"`
	Jobs map[string]Job `yaml:"jobs"`
}

// WorkflowCI tests every package, including the postgres device tests, and
// publishes the image once the tests pass.
func WorkflowCI(goVersion string, image *Image) Workflow {
	return Workflow{
		Name: "ci",
		On: Trigger{
			Push: PushTrigger{
				Branches: []string{"*"},
				Tags:     []string{"*"},
			},
		},
		Jobs: map[string]Job{
			"test":     JobTest(goVersion),
			image.Name: JobRelease(image, "test"),
		},
	}
}

func JobTest(goVersion string) Job {
	return Job{
		RunsOn: "ubuntu-latest",
		Env: map[string]string{
			"PG_HOST":     "localhost",
			"PG_PORT":     "5432",
			"PG_USER":     "postgres",
			"PG_PASS":     "postgres",
			"PG_DB_NAME":  "postgres",
			"PG_SSL_MODE": "disable",
		},
		Services: map[string]Service{
			"postgres": {
				Image: "postgres:14",
				Env:   map[string]string{"POSTGRES_PASSWORD": "postgres"},
				Ports: []string{"5432:5432"},
				Options: "--health-cmd pg_isready --health-interval 10s " +
					"--health-timeout 5s --health-retries 5",
			},
		},
		Steps: []Step{{
			Name: "Checkout",
			Uses: "actions/checkout@v2",
		}, {
			Name: "Set up Go",
			Uses: "actions/setup-go@v4",
			With: Args{"go-version": goVersion},
		}, {
			Name: "Vet",
			Run:  "go vet ./...",
		}, {
			Name: "Test",
			Run:  "go test -race ./...",
		}},
	}
}

type Image struct {
	// The name of the GitHub Action Job to build the image as well as the
	// github-username-prefixed name of the image in the registry.
	Name string

	// The path to the Dockerfile relative to the repo root.
	Dockerfile string

	// The path to the build context relative to the repo root.
	Context string

	// The build arguments.
	Args map[string]string
}

func GoImage(target string) *Image {
	return &Image{
		Name:       target,
		Context:    ".",
		Dockerfile: "./docker/golang/Dockerfile",
		Args:       map[string]string{"TARGET": target},
	}
}

func JobRelease(image *Image, needs ...string) Job {
	buildArgs := ""
	for key, value := range image.Args {
		buildArgs += fmt.Sprintf("%s=%s\n", key, value)
	}
	return Job{
		RunsOn: "ubuntu-latest",
		Needs:  needs,
		Steps: []Step{{
			Name: "Checkout",
			Uses: "actions/checkout@v2",
		}, {
			Name: "Prepare",
			ID:   "prep",
			Run: fmt.Sprintf(`DOCKER_IMAGE=${{ secrets.DOCKER_USERNAME }}/%s
VERSION=latest
SHORTREF=${GITHUB_SHA::8}

if [[ $GITHUB_REF == refs/tags/* ]]; then
  VERSION=${GITHUB_REF#refs/tags/v}
fi
TAGS="${DOCKER_IMAGE}:${VERSION},${DOCKER_IMAGE}:${SHORTREF}"

echo "tags=${TAGS}" >> $GITHUB_OUTPUT`, image.Name),
		}, {
			Name: "Set up Docker Buildx",
			ID:   "buildx",
			Uses: "docker/setup-buildx-action@master",
		}, {
			Name: "Login to DockerHub",
			If:   "github.event_name != 'pull_request'",
			Uses: "docker/login-action@v1",
			With: Args{
				"username": "${{ secrets.DOCKER_USERNAME }}",
				"password": "${{ secrets.DOCKER_PASSWORD }}",
			},
		}, {
			Name: "Build",
			Uses: "docker/build-push-action@v2",
			With: Args{
				"builder":    "${{ steps.buildx.outputs.name }}",
				"build-args": buildArgs,
				"context":    image.Context,
				"file":       image.Dockerfile,
				"platforms":  "linux/amd64,linux/arm64",
				"push":       true,
				"tags":       "${{ steps.prep.outputs.tags }}",
			},
		}},
	}
}

func MarshalToWriter(w io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling to YAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return nil
}

func main() {
	if err := MarshalToWriter(
		os.Stdout,
		WorkflowCI("1.21", GoImage("blockfs")),
	); err != nil {
		log.Fatalf("marshaling ci workflow: %v", err)
	}
}

// Package ciprovider detects the CI service a build runs on and extracts
// the tag, commit and build number it exposes through the environment.
package ciprovider

// EnvCI is set by every supported CI service.
const EnvCI = "CI"

// Lookup reads one environment variable. os.LookupEnv satisfies it.
type Lookup func(key string) (string, bool)

// Info is what a provider exposes about the current build. Empty fields
// mean the provider does not know the value.
type Info struct {
	Tag         string
	Commit      string
	BuildNumber string
}

// Provider is one CI service.
type Provider interface {
	Name() string
	Detect(env Lookup) bool
	Extract(env Lookup) Info
}

// envProvider covers services whose contract is a fixed set of variables.
type envProvider struct {
	name        string
	marker      string
	tagVar      string
	commitVar   string
	buildNumVar string
}

func (p envProvider) Name() string { return p.name }

func (p envProvider) Detect(env Lookup) bool {
	_, ok := env(p.marker)
	return ok
}

func (p envProvider) Extract(env Lookup) Info {
	return Info{
		Tag:         value(env, p.tagVar),
		Commit:      value(env, p.commitVar),
		BuildNumber: value(env, p.buildNumVar),
	}
}

// githubActions only reports a tag when the workflow was triggered by one;
// GITHUB_REF_NAME is a branch name otherwise.
type githubActions struct{}

func (githubActions) Name() string { return "GitHub Actions" }

func (githubActions) Detect(env Lookup) bool {
	_, ok := env("GITHUB_ACTIONS")
	return ok
}

func (githubActions) Extract(env Lookup) Info {
	info := Info{
		Commit:      value(env, "GITHUB_SHA"),
		BuildNumber: value(env, "GITHUB_RUN_NUMBER"),
	}
	if value(env, "GITHUB_REF_TYPE") == "tag" {
		info.Tag = value(env, "GITHUB_REF_NAME")
	}
	return info
}

var (
	AppVeyor Provider = envProvider{
		name:        "AppVeyor",
		marker:      "APPVEYOR",
		tagVar:      "APPVEYOR_REPO_TAG_NAME",
		commitVar:   "APPVEYOR_REPO_COMMIT",
		buildNumVar: "APPVEYOR_BUILD_NUMBER",
	}
	Travis Provider = envProvider{
		name:        "Travis",
		marker:      "TRAVIS",
		tagVar:      "TRAVIS_TAG",
		commitVar:   "TRAVIS_COMMIT",
		buildNumVar: "TRAVIS_BUILD_NUMBER",
	}
	// Azure DevOps exposes no tag or commit under the variables conanci reads.
	Azure Provider = envProvider{
		name:        "Azure DevOps",
		marker:      "AZURE",
		buildNumVar: "AZURE_BUILD_NUMBER",
	}
	GitLab Provider = envProvider{
		name:        "GitLab CI",
		marker:      "GITLAB_CI",
		tagVar:      "CI_COMMIT_TAG",
		commitVar:   "CI_COMMIT_SHA",
		buildNumVar: "CI_PIPELINE_IID",
	}
	GitHubActions Provider = githubActions{}
)

// Default returns the providers in detection order.
func Default() []Provider {
	return []Provider{AppVeyor, Travis, Azure, GitHubActions, GitLab}
}

func value(env Lookup, key string) string {
	if key == "" {
		return ""
	}
	v, _ := env(key)
	return v
}

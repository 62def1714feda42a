package ciprovider

import "github.com/rs/zerolog/log"

// Result is the merged view of every detected provider.
type Result struct {
	// InCI reports whether the CI marker variable was present at all.
	InCI bool
	// Providers lists the names of detected providers in detection order.
	Providers []string
	Info
}

// Provider returns the last detected provider name, or "" outside CI.
func (r Result) Provider() string {
	if len(r.Providers) == 0 {
		return ""
	}
	return r.Providers[len(r.Providers)-1]
}

// Detect walks providers in order. Providers are only consulted when the
// CI marker is set. A later provider overwrites the non-empty fields of an
// earlier one.
func Detect(env Lookup, providers []Provider) Result {
	var res Result
	if _, ok := env(EnvCI); !ok {
		return res
	}
	res.InCI = true
	log.Info().Msg("CI environment detected")

	for _, p := range providers {
		if !p.Detect(env) {
			continue
		}
		log.Info().Str("provider", p.Name()).Msgf("welcome, %s!", p.Name())
		res.Providers = append(res.Providers, p.Name())
		info := p.Extract(env)
		if info.Tag != "" {
			res.Tag = info.Tag
		}
		if info.Commit != "" {
			res.Commit = info.Commit
		}
		if info.BuildNumber != "" {
			res.BuildNumber = info.BuildNumber
		}
	}
	return res
}

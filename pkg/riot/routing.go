// Package riot provides typed, cached endpoint wrappers for the Riot Games
// API. Each wrapper binds a resource identity to a cache key and a URL
// template and selects the scheduler lane; business logic lives elsewhere.
package riot

import (
	"errors"
	"fmt"
)

// ErrUnknownPlatform is returned for platform codes missing from the routing
// tables.
var ErrUnknownPlatform = errors.New("unknown platform code")

// matchRoute maps a platform code to the regional route used by Match-V5.
// These tables must match Riot's routing exactly: a wrong route yields a
// NOT_FOUND from upstream, not a routing error.
var matchRoute = map[string]string{
	"na1":  "americas",
	"br1":  "americas",
	"la1":  "americas",
	"la2":  "americas",
	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",
	"me1":  "europe",
	"kr":   "asia",
	"jp1":  "asia",
	"oc1":  "sea",
	"ph2":  "sea",
	"sg2":  "sea",
	"th2":  "sea",
	"tw2":  "sea",
	"vn2":  "sea",
}

// accountRoute maps a platform code to the regional route used by Account-V1,
// which only serves americas, asia, and europe. The sea platforms route to
// asia there.
var accountRoute = map[string]string{
	"na1":  "americas",
	"br1":  "americas",
	"la1":  "americas",
	"la2":  "americas",
	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",
	"me1":  "europe",
	"kr":   "asia",
	"jp1":  "asia",
	"oc1":  "asia",
	"ph2":  "asia",
	"sg2":  "asia",
	"th2":  "asia",
	"tw2":  "asia",
	"vn2":  "asia",
}

// PlatformHost returns the platform-scoped API host.
func PlatformHost(platform string) (string, error) {
	if _, ok := matchRoute[platform]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", platform), nil
}

// MatchRegionHost returns the region-scoped API host for Match-V5.
func MatchRegionHost(platform string) (string, error) {
	route, ok := matchRoute[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", route), nil
}

// AccountRegionHost returns the region-scoped API host for Account-V1.
func AccountRegionHost(platform string) (string, error) {
	route, ok := accountRoute[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return fmt.Sprintf("https://%s.api.riotgames.com", route), nil
}

// KnownPlatforms lists the supported platform codes (for validation at the
// service boundary).
func KnownPlatforms() []string {
	out := make([]string, 0, len(matchRoute))
	for p := range matchRoute {
		out = append(out, p)
	}
	return out
}

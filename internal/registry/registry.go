package registry

import (
	"fmt"
	"strings"

	"github.com/canireach/canireach/internal/domain"
)

// Builtin returns the default probe targets. The list is fixed at
// deploy time; a YAML override file (see Load) may replace it, but the
// registry is never mutated at runtime.
func Builtin() []domain.Service {
	return []domain.Service{
		{Name: "Supabase", URL: "https://supabase.co", Icon: "⚡"},
		{Name: "Firebase", URL: "https://firebase.googleapis.com", Icon: "🔥"},
		{Name: "MongoDB Atlas", URL: "https://cloud.mongodb.com", Icon: "🍃"},
		{Name: "AWS", URL: "https://s3.amazonaws.com", Icon: "☁️"},
		{Name: "Neon", URL: "https://neon.tech", Icon: "🐘"},
		{Name: "PlanetScale", URL: "https://planetscale.com", Icon: "🪐"},
		{Name: "Railway", URL: "https://railway.app", Icon: "🚂"},
		{Name: "Render", URL: "https://render.com", Icon: "🎨"},
		{Name: "Cloudflare", URL: "https://cloudflare.com", Icon: "🌐"},
		{Name: "GitHub", URL: "https://github.com", Icon: "🐙"},
	}
}

// Validate checks a registry for empty or duplicate names and
// non-http(s) URLs.
func Validate(services []domain.Service) error {
	if len(services) == 0 {
		return fmt.Errorf("registry is empty")
	}

	seen := make(map[string]bool, len(services))
	for i, svc := range services {
		name := strings.TrimSpace(svc.Name)
		if name == "" {
			return fmt.Errorf("service %d has an empty name", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate service name: %s", name)
		}
		seen[name] = true

		if !strings.HasPrefix(svc.URL, "http://") && !strings.HasPrefix(svc.URL, "https://") {
			return fmt.Errorf("service %s has a non-http(s) url: %s", name, svc.URL)
		}
	}
	return nil
}

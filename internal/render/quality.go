package render

// Profile controls the renderer flag and target resolution for one job.
type Profile struct {
	Name       string `json:"name"`
	Flag       string `json:"flag"`
	Resolution string `json:"resolution"`
}

// DefaultProfileName is used when a job names no quality or an unknown one.
const DefaultProfileName = "medium_quality"

var profiles = []Profile{
	{Name: "low_quality", Flag: "-ql", Resolution: "480p"},
	{Name: "medium_quality", Flag: "-qm", Resolution: "720p"},
	{Name: "high_quality", Flag: "-qh", Resolution: "1080p"},
	{Name: "production_quality", Flag: "-qp", Resolution: "1440p"},
}

// ProfileFor resolves a quality profile by name, falling back to the default
// profile for empty or unknown names.
func ProfileFor(name string) Profile {
	var def Profile
	for _, p := range profiles {
		if p.Name == name {
			return p
		}
		if p.Name == DefaultProfileName {
			def = p
		}
	}
	return def
}

// ValidProfile reports whether name is a supported quality profile.
func ValidProfile(name string) bool {
	for _, p := range profiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Profiles returns the supported quality profiles in ascending quality order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

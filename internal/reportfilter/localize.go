package reportfilter

// Translate maps a source label to its localized form.
type Translate func(label string) string

// Localize returns copies of filters with labels and option labels translated.
func Localize(filters []Descriptor, t Translate) []Descriptor {
	out := make([]Descriptor, 0, len(filters))
	for _, f := range filters {
		f = f.clone()
		if t != nil {
			f.Label = t(f.Label)
			for i := range f.Options {
				f.Options[i].Label = t(f.Options[i].Label)
			}
		}
		out = append(out, f)
	}
	return out
}

package library

// Info summarizes the faces tree
type Info struct {
	Dir         string   `json:"dir"`
	Exists      bool     `json:"exists"`
	People      []Person `json:"people"`
	TotalImages int      `json:"total_images"`
}

// Info returns per-person image counts.
func (l *Library) Info() (*Info, error) {
	info := &Info{Dir: l.dir, Exists: l.Exists()}
	if !info.Exists {
		return info, nil
	}

	people, err := l.People()
	if err != nil {
		return nil, err
	}
	info.People = people
	for _, p := range people {
		info.TotalImages += p.Images
	}
	return info, nil
}

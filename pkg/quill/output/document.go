package output

// document is the structured form shared by the json and yaml formatters.
type document struct {
	Root    string    `json:"root,omitempty" yaml:"root,omitempty"`
	Tree    []docItem `json:"tree,omitempty" yaml:"tree,omitempty"`
	Summary *Summary  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Query   string    `json:"query,omitempty" yaml:"query,omitempty"`
	Results []docHit  `json:"results,omitempty" yaml:"results,omitempty"`
	State   *docState `json:"state,omitempty" yaml:"state,omitempty"`
}

type docItem struct {
	Path      string `json:"path" yaml:"path"`
	Name      string `json:"name" yaml:"name"`
	Depth     int    `json:"depth" yaml:"depth"`
	IsDir     bool   `json:"is_dir" yaml:"is_dir"`
	Collapsed bool   `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Open      bool   `json:"open,omitempty" yaml:"open,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Size      int64  `json:"size,omitempty" yaml:"size,omitempty"`
	Dirty     bool   `json:"dirty,omitempty" yaml:"dirty,omitempty"`
	Cursor    bool   `json:"cursor,omitempty" yaml:"cursor,omitempty"`
}

type docHit struct {
	Key      string `json:"key" yaml:"key"`
	Snippet  string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Name     bool   `json:"name" yaml:"name"`
	Contents bool   `json:"contents" yaml:"contents"`
	Start    int    `json:"start" yaml:"start"`
	End      int    `json:"end" yaml:"end"`
	Selected bool   `json:"selected" yaml:"selected"`
}

type docState struct {
	DataDir             string  `json:"data_dir" yaml:"data_dir"`
	BackgroundImagePath *string `json:"background_image_path" yaml:"background_image_path"`
	LastOpenFile        *string `json:"last_open_file" yaml:"last_open_file"`
	Theme               string  `json:"theme" yaml:"theme"`
}

func buildDocument(r *Report) document {
	doc := document{Root: r.Root, Query: r.Query}

	if r.Tree != nil {
		doc.Tree = make([]docItem, len(r.Tree))
		for i, it := range r.Tree {
			doc.Tree[i] = docItem{
				Path:      it.Path,
				Name:      it.Name,
				Depth:     it.Depth,
				IsDir:     it.IsDir,
				Collapsed: it.Collapsed,
				Open:      it.Open,
				Type:      it.Type,
				Size:      it.Size,
				Dirty:     it.Dirty,
				Cursor:    it.Cursor,
			}
		}
		sum := r.Summarize()
		doc.Summary = &sum
	}

	for _, res := range r.Results {
		doc.Results = append(doc.Results, docHit(res))
	}

	if r.State != nil {
		doc.State = &docState{
			DataDir:             r.State.DataDir,
			BackgroundImagePath: r.State.BackgroundImagePath,
			LastOpenFile:        r.State.LastOpenFile,
			Theme:               r.State.Theme,
		}
	}
	return doc
}

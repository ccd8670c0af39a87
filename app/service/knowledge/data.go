package knowledge

type Section struct {
	Name  string   `json:"name"`
	Facts []string `json:"facts"`
}

type jsonLineItem struct {
	Name  string   `json:"name,omitempty"`
	Facts []string `json:"facts,omitempty"`
}

package orchestrator

// GenerationRequest is the immutable input for one generation run.
type GenerationRequest struct {
	RequesterID     string          `json:"requesterId"`
	RequesterEmail  string          `json:"requesterEmail,omitempty"`
	ThreadID        string          `json:"threadId,omitempty"`
	Message         string          `json:"message"`
	ContentTypeHint ContentKind     `json:"contentTypeHint,omitempty"`
	Context         *RequestContext `json:"context,omitempty"`
}

// RequestContext carries optional structured hints alongside the free-text
// message. All fields are advisory; the model may override them.
type RequestContext struct {
	Topic        string `json:"topic,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Audience     string `json:"audience,omitempty"`
	Tone         string `json:"tone,omitempty"`
	WordCount    int    `json:"wordCount,omitempty"`
	ResourceID   int64  `json:"resourceId,omitempty"`
	CategoryID   int64  `json:"categoryId,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	ResourceName string `json:"resourceName,omitempty"`
	OfficialURL  string `json:"officialUrl,omitempty"`
	DocsURL      string `json:"docsUrl,omitempty"`
	GithubURL    string `json:"githubUrl,omitempty"`
}

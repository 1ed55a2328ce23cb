package api

type credentialsInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type goalInput struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Icon        string `json:"icon" form:"icon"`
}

// goalPatchInput keeps absent fields distinguishable from empty ones so a
// PATCH only touches what it names.
type goalPatchInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

package dto

type IndexPassageRequest struct {
	Partition string `json:"partition" validate:"required,oneof=database document website"`
	Tag       string `json:"tag" validate:"omitempty,max=64"`
	Content   string `json:"content" validate:"required,min=1"`
}

type IndexPassageResponse struct {
	Chunks int `json:"chunks"`
}

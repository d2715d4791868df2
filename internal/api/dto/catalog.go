package dto

import "wayfinder-route-service/internal/services"

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CatalogResponse struct {
	Categories []string              `json:"categories"`
	Selected   string                `json:"selected"`
	Buildings  []DestinationResponse `json:"buildings"`
	Loading    bool                  `json:"loading"`
}

func CatalogFromView(v services.CatalogView) CatalogResponse {
	res := CatalogResponse{
		Categories: make([]string, 0, len(v.Categories)),
		Selected:   v.Selected,
		Buildings:  make([]DestinationResponse, 0, len(v.Buildings)),
		Loading:    v.Loading,
	}
	for _, c := range v.Categories {
		res.Categories = append(res.Categories, c.Name)
	}
	for _, b := range v.Buildings {
		res.Buildings = append(res.Buildings, DestinationFrom(b))
	}
	return res
}

// internal/workers/application/normalize-application/models.go
package normalizeapplication

import "mortgage-workers/internal/models"

type Input struct {
	Application models.ApplicationRecord `json:"application"`
}

type Output struct {
	Normalized models.NormalizedRecord `json:"normalized"`
	Warnings   []string                `json:"warnings"`
}

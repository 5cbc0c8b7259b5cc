package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freeeve/gridfire/api/internal/service"
)

// RecipeHandler serves the read-only crafting catalog.
type RecipeHandler struct {
	recipeSvc *service.RecipeService
}

// NewRecipeHandler creates a RecipeHandler.
func NewRecipeHandler(recipeSvc *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeSvc: recipeSvc}
}

// ListRecipes handles GET /recipes
// Supports ?kind=, ?weaponClass=, ?minGrade=, ?maxGrade=, ?enabled= filters.
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minGrade, _ := strconv.Atoi(q.Get("minGrade"))
	maxGrade, _ := strconv.Atoi(q.Get("maxGrade"))
	var enabled *bool
	if raw := q.Get("enabled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "enabled must be a boolean")
			return
		}
		enabled = &v
	}
	recipes, err := h.recipeSvc.ListFiltered(r.Context(), service.RecipeFilter{
		Kind:        q.Get("kind"),
		WeaponClass: q.Get("weaponClass"),
		MinGrade:    minGrade,
		MaxGrade:    maxGrade,
		Enabled:     enabled,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// GetRecipe handles GET /recipes/{key}
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.recipeSvc.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			writeError(w, http.StatusNotFound, "recipe not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

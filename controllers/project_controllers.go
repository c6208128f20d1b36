package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/services"
	"github.com/yeremiapane/freelance-market/utils"
)

type ProjectController struct {
	DB         *gorm.DB
	Projects   *services.ProjectService
	Moderation *services.ModerationCache
}

func NewProjectController(db *gorm.DB, projects *services.ProjectService, moderation *services.ModerationCache) *ProjectController {
	return &ProjectController{DB: db, Projects: projects, Moderation: moderation}
}

// CreateProject -> buat project baru (status=draft)
func (pc *ProjectController) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	type request struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description" binding:"required"`
		Budget      float64 `json:"budget" binding:"required,gt=0"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Deskripsi melewati moderasi dulu
	if result := pc.Moderation.Check(req.Title + " " + req.Description); !result.IsClean {
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("description contains prohibited terms: %v", result.Errors))
		return
	}

	project := models.Project{
		ClientID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Status:      models.ProjectDraft,
	}

	if err := pc.DB.Create(&project).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Project created: id=%d client=%d", project.ID, userID)
	utils.RespondJSON(c, http.StatusCreated, "Project created", project)
}

// GetAllProjects -> list project, filter status opsional
func (pc *ProjectController) GetAllProjects(c *gin.Context) {
	query := pc.DB.Model(&models.Project{})

	if status := c.Query("status"); status != "" {
		if !models.ValidProjectStatus(models.ProjectStatus(status)) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid status filter"))
			return
		}
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of projects", projects)
}

// GetProjectByID -> detail project beserta bid-nya
func (pc *ProjectController) GetProjectByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	var project models.Project
	if err := pc.DB.Preload("Bids").First(&project, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Project detail", project)
}

// PublishProject -> draft menjadi published
func (pc *ProjectController) PublishProject(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	project, err := pc.Projects.PublishProject(uint(projectID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Project published", project)
}

// CancelProject -> hanya sebelum in_progress
func (pc *ProjectController) CancelProject(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	project, err := pc.Projects.CancelProject(uint(projectID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Project cancelled", project)
}

// CompleteProject -> in_progress menjadi completed, dengan review opsional
func (pc *ProjectController) CompleteProject(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	type request struct {
		FinalAmount *float64 `json:"final_amount"`
		Rating      *int     `json:"rating"`
		Review      *string  `json:"review"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Review juga kena moderasi
	if req.Review != nil {
		if result := pc.Moderation.Check(*req.Review); !result.IsClean {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("review contains prohibited terms: %v", result.Errors))
			return
		}
	}

	result, err := pc.Projects.CompleteProject(uint(projectID), userID, req.FinalAmount, req.Rating, req.Review)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Project completed", result)
}

// GetProjectReviews -> review untuk satu project
func (pc *ProjectController) GetProjectReviews(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	var reviews []models.Review
	if err := pc.DB.Where("project_id = ?", projectID).Find(&reviews).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Project reviews", reviews)
}

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/NaoufalLabrihmi/EMP-Gestion/mindee"
	"github.com/NaoufalLabrihmi/EMP-Gestion/models"
	"github.com/NaoufalLabrihmi/EMP-Gestion/pdf"
	"github.com/NaoufalLabrihmi/EMP-Gestion/store"
)

const (
	listCacheKey = "employee_data"
	listCacheTTL = 5 * time.Minute
)

// EmployeeStore is the slice of the database gateway the handlers need.
type EmployeeStore interface {
	Insert(ctx context.Context, e *models.Employee) error
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, id int) (*models.Employee, error)
	Update(ctx context.Context, id int, fields map[string]string) (*models.Employee, error)
	Delete(ctx context.Context, id int) error
}

// Employees bundles the employee endpoints with their collaborators.
// Redis is optional: a nil client disables the list cache.
type Employees struct {
	Store     EmployeeStore
	Extractor mindee.Extractor
	Redis     *redis.Client
}

// Add accepts an identity-document upload, runs it through the extraction
// service and stores the recognized fields as a new employee row. The upload
// is staged in a temporary file that is removed on every exit path,
// including extraction failure.
func (h *Employees) Add(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upload file: " + err.Error()})
		return
	}

	tmp, err := os.CreateTemp("", "employee-doc-*"+filepath.Ext(file.Filename))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file: " + err.Error()})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file: " + err.Error()})
		return
	}

	fields, err := h.Extractor.Extract(c.Request.Context(), tmpPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Extraction error: " + err.Error()})
		return
	}

	employee := models.Employee{
		Name:           fields.Name,
		Surname:        fields.Surname,
		IDNumber:       fields.IDNumber,
		BirthDate:      fields.BirthDate,
		Sex:            fields.Sex,
		Nationality:    fields.Nationality,
		PersonalNumber: fields.PersonalNumber,
	}
	if err := h.Store.Insert(c.Request.Context(), &employee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}
	h.invalidateListCache(c.Request.Context())

	// The contract echoes the stored fields only; the assigned id is not
	// part of the response.
	c.JSON(http.StatusOK, gin.H{
		"message": "Employee added successfully",
		"employee": gin.H{
			"name":            employee.Name,
			"surname":         employee.Surname,
			"id_number":       employee.IDNumber,
			"birth_date":      employee.BirthDate,
			"sex":             employee.Sex,
			"nationality":     employee.Nationality,
			"personal_number": employee.PersonalNumber,
		},
	})
}

// List returns every stored employee, ordered by id. When Redis is
// configured the serialized response is cached for five minutes; every
// write endpoint drops the cached entry.
func (h *Employees) List(c *gin.Context) {
	ctx := c.Request.Context()

	if h.Redis != nil {
		if data, err := h.Redis.Get(ctx, listCacheKey).Result(); err == nil {
			slog.Debug("employee list served from cache")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(data))
			return
		}
	}

	employees, err := h.Store.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}

	if h.Redis != nil {
		if data, err := json.Marshal(employees); err == nil {
			if err := h.Redis.Set(ctx, listCacheKey, data, listCacheTTL).Err(); err != nil {
				slog.Warn("caching employee list failed", "err", err)
			}
		}
	}

	c.JSON(http.StatusOK, employees)
}

// Edit applies a partial update. Only keys from the fixed allow-list are
// honored; anything else in the body is dropped silently.
func (h *Employees) Edit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}

	var input map[string]string
	if err := c.ShouldBindJSON(&input); err != nil || len(input) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided for update."})
		return
	}

	fields := map[string]string{}
	for _, name := range models.UpdatableFields {
		if v, ok := input[name]; ok {
			fields[name] = v
		}
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields provided for update."})
		return
	}

	employee, err := h.Store.Update(c.Request.Context(), id, fields)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}
	h.invalidateListCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Employee updated successfully", "employee": employee})
}

// Delete removes an employee row. A missing id still reports success; the
// endpoint is an idempotent no-op in that case.
func (h *Employees) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}

	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}
	h.invalidateListCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Employee with id %d deleted successfully.", id)})
}

// Pdf serves a one-page badge for the employee as a downloadable
// attachment named "<surname name>.pdf".
func (h *Employees) Pdf(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}

	employee, err := h.Store.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}

	fullName := strings.TrimSpace(employee.Surname + " " + employee.Name)
	data, err := pdf.RenderEmployeeBadge(fullName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF generation error: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fullName+".pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Employees) invalidateListCache(ctx context.Context) {
	if h.Redis == nil {
		return
	}
	if err := h.Redis.Del(ctx, listCacheKey).Err(); err != nil {
		slog.Warn("invalidating employee list cache failed", "err", err)
	}
}

package rest

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"issue-classifier/internal/domain/entity"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type classifyRequest struct {
	ImageURL string `json:"imageUrl"`
}

// classifyResponse flattens the verdict next to the success flag.
type classifyResponse struct {
	Success bool `json:"success"`
	*entity.ClassificationVerdict
}

type describeRequest struct {
	ImageURL  string `json:"imageUrl"`
	IssueType string `json:"issueType"`
}

type describeResponse struct {
	Success     bool   `json:"success"`
	Description string `json:"description"`
}

type issueTypesResponse struct {
	Success    bool                   `json:"success"`
	IssueTypes []entity.TaxonomyEntry `json:"issueTypes"`
	Count      int                    `json:"count"`
}

type healthResponse struct {
	Status             string `json:"status"`
	ModelLoaded        bool   `json:"model_loaded"`
	DescriptionEnabled bool   `json:"description_enabled"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:             "healthy",
		ModelLoaded:        s.svc.ModelLoaded(),
		DescriptionEnabled: s.svc.DescriptionEnabled(),
	})
}

func (s *Server) issueTypes(c *gin.Context) {
	entries := s.svc.IssueTypes()
	c.JSON(http.StatusOK, issueTypesResponse{Success: true, IssueTypes: entries, Count: len(entries)})
}

// classify accepts either a JSON body with imageUrl or a multipart upload in the "image" field.
func (s *Server) classify(c *gin.Context) {
	var (
		verdict *entity.ClassificationVerdict
		err     error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, upErr := s.readUpload(c)
		if upErr != nil {
			s.fail(c, upErr)
			return
		}
		verdict, err = s.svc.ClassifyBytes(c.Request.Context(), data)
	} else {
		var req classifyRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			badRequest(c, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.ImageURL) == "" {
			badRequest(c, "imageUrl is required")
			return
		}
		verdict, err = s.svc.ClassifyURL(c.Request.Context(), req.ImageURL)
	}

	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classifyResponse{Success: true, ClassificationVerdict: verdict})
}

func (s *Server) readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: missing multipart field \"image\"", entity.ErrImageFetch)
	}
	if s.maxUploadSize > 0 && fh.Size > s.maxUploadSize {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", entity.ErrImageFetch, s.maxUploadSize)
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") && ct != "application/octet-stream" {
		return nil, fmt.Errorf("%w: content type %q is not an image", entity.ErrImageFetch, ct)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrImageFetch, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrImageFetch, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", entity.ErrImageFetch)
	}
	return data, nil
}

func (s *Server) generateDescription(c *gin.Context) {
	var req describeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		badRequest(c, "imageUrl is required")
		return
	}

	// issueType is optional; a missing or unknown code is described as a generic municipal issue.
	text, err := s.svc.DescribeURL(c.Request.Context(), req.ImageURL, entity.IssueType(strings.TrimSpace(req.IssueType)))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, describeResponse{Success: true, Description: text})
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 10 << 20

type UploadHandler struct {
	uploader FileUploader
	log      *slog.Logger
}

func NewUploadHandler(uploader FileUploader, log *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, log: log}
}

// Upload stores an image from the multipart field "file". The form field
// "key" carries the client's file name; only its extension is used.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File uploads are not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}

	name := c.PostForm("key")
	if name == "" {
		name = fileHeader.Filename
	}

	src, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer src.Close()

	url, err := h.uploader.Upload(c.Request.Context(), userID, name, src, fileHeader.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info("file uploaded", "user_id", userID, "size", fileHeader.Size)

	c.JSON(http.StatusOK, gin.H{
		"message": "OK",
		"fileUrl": url,
	})
}

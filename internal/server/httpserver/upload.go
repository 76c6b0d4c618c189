package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
	"github.com/dmitrijs2005/pitstop/internal/server/images"
)

const (
	msgNoImage     = "No image File provided!"
	msgImageStored = "File path Stored!"
)

// addImage stores the multipart "image" file and returns its path. The
// post mutations carry the path afterwards; an "oldPath" form value names
// the image being replaced.
func (s *HTTPServer) addImage(c *gin.Context) {
	ctx := c.Request.Context()

	if !auth.IdentityFromContext(ctx).Authenticated {
		_ = c.Error(common.NewUnauthenticated("User not Authenticated!"))
		return
	}

	fh, err := c.FormFile("image")
	if err != nil || !images.Accepted(fh.Header.Get("Content-Type")) {
		c.JSON(http.StatusOK, gin.H{"message": msgNoImage})
		return
	}

	if old := c.PostForm("oldPath"); old != "" && s.opts.Images != nil {
		s.opts.Images.ReleaseImage(ctx, old)
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(common.NewInternal(err))
		return
	}
	defer f.Close()

	path, err := s.opts.Store.Save(ctx, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		_ = c.Error(common.NewInternal(err))
		return
	}

	if s.opts.Metrics != nil {
		s.opts.Metrics.ImageUploads.Inc()
	}

	c.JSON(http.StatusCreated, gin.H{"message": msgImageStored, "imageUrlPath": path})
}

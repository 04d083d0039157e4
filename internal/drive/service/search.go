package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/drive-backend/internal/pkg/response"
)

// Search 按名称搜索自己的文件与文件夹
// GET /api/search?q=
func (s *DriveService) Search(c *gin.Context) {
	result, err := s.search.Search(c.Request.Context(), currentUser(c), c.Query("q"))
	if err != nil {
		s.handleError(c, err, "search failed")
		return
	}
	response.Success(c, gin.H{
		"folders": toFolderResponses(result.Folders),
		"files":   toFileResponses(result.Files),
	})
}

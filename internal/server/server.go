package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quietroom/noticing/internal/core"
	"github.com/quietroom/noticing/internal/core/model"
)

type Server struct {
	Notebook *core.Notebook
}

func NewServer(nb *core.Notebook) *Server {
	return &Server{Notebook: nb}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/prompt", s.Prompt)
	r.GET("/tags", s.Tags)

	r.POST("/entries", s.AddEntry)
	r.DELETE("/entries/:id", s.DeleteEntry)

	r.GET("/people", s.People)
	r.GET("/people/:name", s.Person)
	r.GET("/people/:name/rhythm", s.Rhythm)
	r.GET("/people/:name/report", s.Report)
	r.POST("/people/:name/reflection", s.Reflect)

	r.GET("/backup", s.ExportBackup)
	r.POST("/restore", s.ImportBackup)

	return r
}

func (s *Server) Prompt(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prompt": core.RandomPrompt()})
}

func (s *Server) Tags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": core.TagOptions})
}

type AddEntryRequest struct {
	Text  string   `json:"text"`
	Frame string   `json:"frame"`
	Tags  []string `json:"tags"`
}

func (s *Server) AddEntry(c *gin.Context) {
	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	entry, err := s.Notebook.AddEntry(req.Text, req.Frame, req.Tags)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) DeleteEntry(c *gin.Context) {
	if err := s.Notebook.DeleteEntry(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) People(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"people": s.Notebook.Roster()})
}

// Person returns the derived view plus the filtered entry list for the
// requested mode/tag. The summary numbers always describe the full view.
func (s *Server) Person(c *gin.Context) {
	name := c.Param("name")
	view, scoped, mode, err := s.Notebook.Filtered(name, c.Query("mode"), c.Query("tag"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if scoped == nil {
		scoped = []model.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"name":            view.Target,
		"mode":            mode,
		"entries":         scoped,
		"collaborators":   view.Collaborators,
		"tagCounts":       view.TagCounts,
		"last30DaysCount": view.Last30DaysCount,
		"soloCount":       view.SoloCount,
		"groupCount":      view.GroupCount,
	})
}

func (s *Server) Rhythm(c *gin.Context) {
	points := s.Notebook.Rhythm(c.Param("name"))
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (s *Server) Report(c *gin.Context) {
	text := s.Notebook.Report(c.Param("name"))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

type ReflectRequest struct {
	Mode     string `json:"mode"`
	Tag      string `json:"tag"`
	ScopeAll bool   `json:"scopeAll"`
}

func (s *Server) Reflect(c *gin.Context) {
	var req ReflectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	summary, err := s.Notebook.Reflect(c.Request.Context(), c.Param("name"), req.Mode, req.Tag, req.ScopeAll)
	if err != nil {
		log.Printf("Reflection failed: %v", err)
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "already in progress") {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) ExportBackup(c *gin.Context) {
	data, err := s.Notebook.ExportBackup()
	if err != nil {
		log.Printf("Backup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export backup"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="noticing-backup.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) ImportBackup(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	count, err := s.Notebook.ImportBackup(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": count})
}

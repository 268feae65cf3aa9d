// Package api provides the REST API server for drumscript
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/drumscript/pkg/config"
	"github.com/james-see/drumscript/pkg/duration"
	"github.com/james-see/drumscript/pkg/groove"
	"github.com/james-see/drumscript/pkg/kit"
	"github.com/james-see/drumscript/pkg/logging"
	"github.com/james-see/drumscript/pkg/rhythm"
	"github.com/james-see/drumscript/pkg/score"
)

// @title drumscript API
// @version 1.0
// @description API for rendering drum grooves to MIDI
// @host localhost:8080
// @BasePath /api/v1

// maxUpload bounds request bodies for render and inspect.
const maxUpload = 1 << 20

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the API routes.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/presets", listPresets)
		v1.GET("/presets/:name", getPreset)
		v1.GET("/presets/:name/midi", renderPreset)
		v1.GET("/kit", listKit)
		v1.GET("/durations", listDurations)
		v1.GET("/euclid", euclid)
		v1.POST("/render", renderGroove)
		v1.POST("/inspect", inspectMIDI)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "X-Render-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	log := logging.GetLogger("api")
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("Request")
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "drumscript",
	})
}

// listPresets godoc
// @Summary List built-in grooves
// @Tags grooves
// @Produce json
// @Success 200 {object} map[string][]map[string]string
// @Router /api/v1/presets [get]
func listPresets(c *gin.Context) {
	presets, err := groove.Presets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]map[string]string, 0, len(presets))
	for _, g := range presets {
		out = append(out, map[string]string{"name": g.Name, "description": g.Description})
	}
	c.JSON(http.StatusOK, gin.H{"presets": out})
}

// getPreset godoc
// @Summary Get a built-in groove document
// @Tags grooves
// @Produce json
// @Param name path string true "Preset name"
// @Success 200 {object} groove.Groove
// @Failure 404 {object} map[string]string
// @Router /api/v1/presets/{name} [get]
func getPreset(c *gin.Context) {
	g, err := groove.Preset(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, g)
}

// renderPreset godoc
// @Summary Render a built-in groove to MIDI
// @Tags grooves
// @Produce audio/midi
// @Param name path string true "Preset name"
// @Param bpm query number false "Tempo override"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /api/v1/presets/{name}/midi [get]
func renderPreset(c *gin.Context) {
	g, err := groove.Preset(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	overrides, err := queryOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	render(c, g, overrides)
}

// listKit godoc
// @Summary List drum kit instruments
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]kit.Entry
// @Router /api/v1/kit [get]
func listKit(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kit": kit.Entries()})
}

// listDurations godoc
// @Summary List note durations
// @Description Returns every duration name with its length in ticks (96 per quarter note)
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]map[string]interface{}
// @Router /api/v1/durations [get]
func listDurations(c *gin.Context) {
	tokens := duration.Tokens()
	out := make([]gin.H, 0, len(tokens))
	for _, tok := range tokens {
		length := duration.MustBeatLength(tok)
		ticks, _ := duration.Ticks(tok)
		out = append(out, gin.H{
			"name":  tok,
			"beats": length.RatString(),
			"ticks": ticks,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"ticks_per_quarter": duration.TicksPerQuarter,
		"durations":         out,
	})
}

// euclid godoc
// @Summary Euclidean rhythm
// @Tags rhythm
// @Produce json
// @Param onsets query int true "Number of onsets"
// @Param steps query int true "Number of steps"
// @Param rotate query int false "Rotate right by this many steps"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/euclid [get]
func euclid(c *gin.Context) {
	onsets, err1 := strconv.Atoi(c.Query("onsets"))
	steps, err2 := strconv.Atoi(c.Query("steps"))
	rotate, err3 := strconv.Atoi(c.DefaultQuery("rotate", "0"))
	if err := errors.Join(err1, err2, err3); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "onsets, steps and rotate must be integers"})
		return
	}
	if err := rhythm.CheckEuclid(onsets, steps); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pattern := rhythm.Rotate(rhythm.Euclid(onsets, steps), rotate)
	c.JSON(http.StatusOK, gin.H{
		"onsets":   onsets,
		"steps":    steps,
		"pattern":  pattern,
		"duration": duration.ForSize(steps),
	})
}

// renderGroove godoc
// @Summary Render a groove document to MIDI
// @Description Accepts a groove as JSON or YAML and returns a Standard MIDI File
// @Tags grooves
// @Accept json
// @Produce audio/midi
// @Param groove body groove.Groove true "Groove document"
// @Param bpm query number false "Tempo override"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/render [post]
func renderGroove(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	g, err := groove.Parse(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	overrides, err := queryOverrides(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	render(c, g, overrides)
}

// inspectMIDI godoc
// @Summary Summarize a MIDI file
// @Tags midi
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Success 200 {object} score.Summary
// @Failure 400 {object} map[string]string
// @Router /api/v1/inspect [post]
func inspectMIDI(c *gin.Context) {
	// Get uploaded file
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	summary, err := score.Inspect(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func queryOverrides(c *gin.Context) (config.Settings, error) {
	var s config.Settings
	if v := c.Query("bpm"); v != "" {
		bpm, err := strconv.ParseFloat(v, 64)
		if err != nil || bpm <= 0 {
			return s, fmt.Errorf("invalid bpm %q", v)
		}
		s.BPM = bpm
	}
	if v := c.Query("signature"); v != "" {
		if _, _, err := config.ParseSignature(v); err != nil {
			return s, err
		}
		s.Signature = v
	}
	return s, nil
}

func render(c *gin.Context, g *groove.Groove, overrides config.Settings) {
	id := uuid.New().String()
	log := logging.GetLogger("api").WithFields(logrus.Fields{"render_id": id, "groove": g.Name})
	c.Header("X-Render-ID", id)

	d, err := groove.Build(g, overrides)
	if err != nil {
		log.WithError(err).Warn("Render failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "render_id": id})
		return
	}
	data, err := d.Bytes()
	if err != nil {
		log.WithError(err).Error("MIDI encoding failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "render_id": id})
		return
	}

	log.WithFields(logrus.Fields{"bytes": len(data), "events": d.Score().Len()}).Info("Rendered groove")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName(g.Name)))
	c.Data(http.StatusOK, "audio/midi", data)
}

func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		name = "groove"
	}
	return name + ".mid"
}

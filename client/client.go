package client

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/chainregistry"
	"github.com/epicexcelsior/awaken-long-tail-chains/chains"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/core"
	dbTypes "github.com/epicexcelsior/awaken-long-tail-chains/db"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Server answers export requests over HTTP. DB and Gatherer are optional.
type Server struct {
	Settings core.AdapterSettings
	Service  core.Service
	DB       *gorm.DB
	Gatherer prometheus.Gatherer

	// Endpoints overrides a chain preset's API URL, keyed by chain name.
	Endpoints map[string]string

	mu     sync.RWMutex
	assets chainregistry.AssetMap
}

// SetAssets swaps the chain registry assets used by later requests.
func (s *Server) SetAssets(assets chainregistry.AssetMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = assets
}

func (s *Server) settings() core.AdapterSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := s.Settings
	if s.assets != nil {
		settings.Assets = s.assets
	}
	return settings
}

func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/chains", GetChains)
	r.POST("/export.csv", s.ExportCSV)
	r.GET("/history", s.GetHistory)
	r.GET("/tokens/:chain", s.GetTokens)
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		//Probably want to lock CORs down later, will need to know the hostname of the UI server
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Export-Complete, X-Export-Dropped, X-Export-Source")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

type chainResponse struct {
	Name     string `json:"name"`
	Display  string `json:"display"`
	Provider string `json:"provider"`
	Symbol   string `json:"symbol"`
}

func GetChains(c *gin.Context) {
	all := chains.All()
	response := make([]chainResponse, 0, len(all))
	for _, chain := range all {
		response = append(response, chainResponse{
			Name:     chain.Name,
			Display:  chain.DisplayName,
			Provider: chain.Provider,
			Symbol:   chain.Native.Symbol,
		})
	}
	c.JSON(http.StatusOK, response)
}

type ExportCSVRequest struct {
	Chain     string  `json:"chain"`
	Address   string  `json:"address"`
	StartDate *string `json:"startDate"` //can be null
	EndDate   *string `json:"endDate"`   //can be null
}

func (s *Server) ExportCSV(c *gin.Context) {
	var requestBody ExportCSVRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error processing request body"})
		return
	}

	if requestBody.Address == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Address is required"})
		return
	}
	if requestBody.Chain == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Chain is required"})
		return
	}

	chain, err := chains.Lookup(requestBody.Chain)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	chain = chain.WithAPIURL(s.Endpoints[chain.Name])

	var startDate, endDate string
	if requestBody.StartDate != nil {
		startDate = *requestBody.StartDate
	}
	if requestBody.EndDate != nil {
		endDate = *requestBody.EndDate
	}
	start, end, err := config.ParseDateWindow(startDate, endDate)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	session, err := core.NewSession(chain, s.settings())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	started := time.Now()
	export, err := s.Service.Export(c.Request.Context(), session, core.ExportRequest{
		Address:   requestBody.Address,
		StartDate: start,
		EndDate:   end,
	})
	s.audit(chain.Name, requestBody.Address, started, export, err, session)

	var validation *providers.ValidationError
	var exhausted *providers.ExhaustedFetchError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	case errors.As(err, &exhausted):
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error(), "retry": true})
		return
	case err != nil:
		config.Log.Error("Error exporting transactions", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error getting rows for address"})
		return
	}

	if len(export.Rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No transactions for given address"})
		return
	}

	c.Header("X-Export-Complete", strconv.FormatBool(export.Metadata.Complete))
	c.Header("X-Export-Dropped", strconv.Itoa(export.Metadata.DroppedCount))
	c.Header("X-Export-Source", export.Metadata.DataSource)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.csv", chain.Name, requestBody.Address))
	c.Data(http.StatusOK, "text/csv", []byte(export.CSV()))
}

func (s *Server) audit(chain, address string, started time.Time, export core.Export, exportErr error, session core.Session) {
	RecordRun(s.DB, chain, address, started, export, exportErr, session)
}

// RecordRun stores an export run when db is set. Failures are logged, never returned.
func RecordRun(db *gorm.DB, chain, address string, started time.Time, export core.Export, exportErr error, session core.Session) {
	if db == nil {
		return
	}
	summary := dbTypes.RunSummary{
		TotalFetched: export.Metadata.TotalFetched,
		RawRecords:   export.Metadata.RawRecords,
		Dropped:      export.Metadata.DroppedCount,
		ExportedRows: len(export.Rows),
		Complete:     export.Metadata.Complete,
		DataSource:   export.Metadata.DataSource,
		Branches:     export.Metadata.Branches,
		Err:          exportErr,
	}
	if _, err := dbTypes.RecordExport(db, chain, address, started, time.Now(), summary, session.Tokens); err != nil {
		config.Log.Error("Error recording export run", err)
	}
}

func (s *Server) GetHistory(c *gin.Context) {
	if s.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "No database configured"})
		return
	}
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Address is required"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Limit must be a positive number"})
		return
	}

	runs, err := dbTypes.GetExportRuns(s.DB, address, c.Query("chain"), limit)
	if err != nil {
		config.Log.Error("Error reading export runs", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading export runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) GetTokens(c *gin.Context) {
	if s.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "No database configured"})
		return
	}
	tokens, err := dbTypes.GetTokens(s.DB, c.Param("chain"))
	if err != nil {
		config.Log.Error("Error reading tokens", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading tokens"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/assets"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/auth"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/contracts"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/database"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/ledger"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/lending"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/points"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/internal/trading"
	"github.com/RWAworkteam/ZeroCarbon-OS-1/pkg/identifier"
)

const (
	minFlows      = 10
	maxFlows      = 60
	numWorkers    = 5
	serverAddress = "http://localhost:8080"
)

var (
	categories = []string{"solar", "storage", "efficiency", "wind"}
	scenarios  = []string{"autoRepay", "revenueSharing", "complianceCheck", "subsidyPayment"}
	sides      = []string{"buy", "sell"}
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	// Configure pretty logging
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes performance statistics from recorded durations
// Returns min, max, mean, median, 95th percentile, and 99th percentile durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	// Sort durations for percentile calculations
	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	// Calculate mean
	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))

	// Calculate median
	median = rs.durations[len(rs.durations)/2]

	// Calculate percentiles
	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// simulationClient handles HTTP communication with the platform API
type simulationClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	stats     map[string]*routeStats
}

// newSimulationClient creates and initializes a new simulation client
// It authenticates with the API and prepares performance tracking
func newSimulationClient() (*simulationClient, error) {
	// Create HTTP client with timeout
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	sc := &simulationClient{
		baseURL: serverAddress,
		client:  client,
		stats: map[string]*routeStats{
			"auth":     {name: "Authentication"},
			"register": {name: "Register Asset"},
			"audit":    {name: "Audit Asset"},
			"tokenize": {name: "Tokenize Asset"},
			"loan":     {name: "Create Loan"},
			"trade":    {name: "Create Trade"},
			"earn":     {name: "Earn Points"},
			"redeem":   {name: "Redeem Points"},
			"scenario": {name: "Simulate Scenario"},
			"status":   {name: "Chain Status"},
		},
	}

	// Get auth token
	token, err := sc.authenticate()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	sc.authToken = token

	return sc, nil
}

// authenticate performs API authentication and returns a JWT token
func (sc *simulationClient) authenticate() (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["auth"].addDuration(time.Since(start))
	}()

	credentials := map[string]string{
		"api_key":    auth.DemoAPIKey,
		"api_secret": auth.DemoAPISecret,
	}

	body, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(
		fmt.Sprintf("%s/api/v1/auth/token", sc.baseURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("authentication failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Token string `json:"jwt_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Data.Token, nil
}

// post sends an authenticated POST request and decodes the response
// envelope's data field into out.
func (sc *simulationClient) post(statKey, path string, payload interface{}, out interface{}) error {
	start := time.Now()
	defer func() {
		sc.stats[statKey].addDuration(time.Since(start))
	}()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest("POST", sc.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.New().String())

	return sc.do(statKey, req, out)
}

// get sends an authenticated GET request and decodes the response
// envelope's data field into out.
func (sc *simulationClient) get(statKey, path string, out interface{}) error {
	start := time.Now()
	defer func() {
		sc.stats[statKey].addDuration(time.Since(start))
	}()

	req, err := http.NewRequest("GET", sc.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))

	return sc.do(statKey, req, out)
}

func (sc *simulationClient) do(statKey string, req *http.Request, out interface{}) error {
	resp, err := sc.client.Do(req)
	if err != nil {
		sc.stats[statKey].failures++
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		sc.stats[statKey].failures++
		return fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("response", string(respBody)).Str("path", req.URL.Path).Msg("API response")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		sc.stats[statKey].failures++
		return fmt.Errorf("%s failed with status %d: %s", req.URL.Path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	return json.Unmarshal(envelope.Data, out)
}

// printPerformanceStats outputs formatted performance statistics for all API endpoints
func (sc *simulationClient) printPerformanceStats() {
	fmt.Println("\nAPI Performance Statistics")
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("%-20s %10s %10s %10s %10s %10s %10s %10s %10s\n",
		"Endpoint", "Calls", "Errors", "Min", "Max", "Mean", "Median", "P95", "P99")
	fmt.Println(strings.Repeat("-", 100))

	for _, stats := range sc.stats {
		min, max, mean, median, p95, p99 := stats.calculate()
		fmt.Printf("%-20s %10d %10d %10s %10s %10s %10s %10s %10s\n",
			stats.name,
			stats.totalCalls,
			stats.failures,
			min.Round(time.Millisecond),
			max.Round(time.Millisecond),
			mean.Round(time.Millisecond),
			median.Round(time.Millisecond),
			p95.Round(time.Millisecond),
			p99.Round(time.Millisecond))
	}
	fmt.Println(strings.Repeat("-", 100))
}

// flowStats aggregates outcomes across all simulated carbon flows
type flowStats struct {
	mu            sync.Mutex
	AssetsCreated int
	Tokenized     int
	LoansFunded   int
	LoansInReview int
	Trades        int
	TradeValue    float64
	PointsEarned  int64
	Redemptions   int
	Scenarios     int
	Failed        int
	Categories    map[string]int
	TradeSides    map[string]int
}

// runCarbonFlow drives one asset through the full lifecycle: register,
// audit, tokenize, borrow against it, trade the volume, then exercise
// the points engine and a random contract scenario.
func runCarbonFlow(workerID int, sc *simulationClient, stats *flowStats) {
	category := categories[rand.Intn(len(categories))]
	amount := float64(rand.Intn(9000) + 1000)

	// Register
	var asset struct {
		ID             string  `json:"id"`
		EstimatedValue float64 `json:"estimated_value"`
	}
	err := sc.post("register", "/api/v1/assets", map[string]interface{}{
		"project_name": fmt.Sprintf("Simulated %s project %d-%d", category, workerID, rand.Intn(10000)),
		"category":     category,
		"amount":       amount,
		"device_id":    fmt.Sprintf("DEV-%d", rand.Intn(1000)),
	}, &asset)
	if err != nil {
		log.Error().Err(err).Int("worker_id", workerID).Msg("Failed to register asset")
		stats.mu.Lock()
		stats.Failed++
		stats.mu.Unlock()
		return
	}

	stats.mu.Lock()
	stats.AssetsCreated++
	stats.Categories[category]++
	stats.mu.Unlock()

	// Audit (collaborator endpoint)
	if err := sc.post("audit", fmt.Sprintf("/api/v1/internal/assets/%s/audit", asset.ID), nil, nil); err != nil {
		log.Error().Err(err).Str("asset_id", asset.ID).Msg("Failed to audit asset")
		return
	}

	// Tokenize
	var minted struct {
		ID             string  `json:"id"`
		TokenID        string  `json:"token_id"`
		EstimatedValue float64 `json:"estimated_value"`
	}
	err = sc.post("tokenize", fmt.Sprintf("/api/v1/assets/%s/tokenize", asset.ID),
		map[string]interface{}{"volume": amount}, &minted)
	if err != nil {
		log.Error().Err(err).Str("asset_id", asset.ID).Msg("Failed to tokenize asset")
		return
	}

	stats.mu.Lock()
	stats.Tokenized++
	stats.mu.Unlock()

	// Borrow against the token. Principals above 70% of the asset value
	// land in review instead of being funded, so spread requests across
	// both sides of the threshold.
	principal := minted.EstimatedValue * (0.3 + rand.Float64()*0.6)
	var loan struct {
		Funded bool `json:"funded"`
		Loan   struct {
			ID         string `json:"id"`
			LTVPercent int    `json:"ltv_percent"`
			Status     string `json:"status"`
		} `json:"loan"`
	}
	err = sc.post("loan", "/api/v1/finance/loans", map[string]interface{}{
		"asset_id":  asset.ID,
		"principal": math.Round(principal),
		"rate":      3.85,
		"tenor":     12,
	}, &loan)
	if err != nil {
		log.Error().Err(err).Str("asset_id", asset.ID).Msg("Failed to create loan")
	} else {
		stats.mu.Lock()
		if loan.Funded {
			stats.LoansFunded++
		} else {
			stats.LoansInReview++
		}
		stats.mu.Unlock()
		log.Info().
			Str("loan_id", loan.Loan.ID).
			Int("ltv_percent", loan.Loan.LTVPercent).
			Bool("funded", loan.Funded).
			Msg("Loan created")
	}

	// Trade part of the volume
	side := sides[rand.Intn(len(sides))]
	quantity := float64(rand.Intn(int(amount)/2) + 1)
	price := 55.0 + rand.Float64()*10
	var trade struct {
		Trade struct {
			ID string `json:"id"`
		} `json:"trade"`
		WalletBalance float64 `json:"wallet_balance"`
	}
	err = sc.post("trade", "/api/v1/trading/trades", map[string]interface{}{
		"asset_id": asset.ID,
		"side":     side,
		"quantity": quantity,
		"price":    math.Round(price*100) / 100,
	}, &trade)
	if err != nil {
		log.Error().Err(err).Str("asset_id", asset.ID).Msg("Failed to create trade")
	} else {
		stats.mu.Lock()
		stats.Trades++
		stats.TradeValue += quantity * price
		stats.TradeSides[side]++
		stats.mu.Unlock()
	}

	// Points accrual for the demo enterprise account, with the
	// occasional redemption
	earned := int64(rand.Intn(500) + 50)
	err = sc.post("earn", "/api/v1/points/earn", map[string]interface{}{
		"account_id":  "PA-001",
		"points":      earned,
		"source":      "simulated green activity",
		"description": "simulation accrual",
	}, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to earn points")
	} else {
		stats.mu.Lock()
		stats.PointsEarned += earned
		stats.mu.Unlock()
	}

	if rand.Float64() < 0.3 {
		err = sc.post("redeem", "/api/v1/points/redeem", map[string]interface{}{
			"account_id": "PA-001",
			"reward_id":  "RW-001",
		}, nil)
		if err != nil {
			log.Warn().Err(err).Msg("Redemption rejected")
		} else {
			stats.mu.Lock()
			stats.Redemptions++
			stats.mu.Unlock()
		}
	}

	// Random contract scenario
	if rand.Float64() < 0.5 {
		scenario := scenarios[rand.Intn(len(scenarios))]
		err = sc.post("scenario", "/api/v1/contracts/simulate",
			map[string]string{"scenario": scenario}, nil)
		if err != nil {
			log.Error().Err(err).Str("scenario", scenario).Msg("Failed to simulate scenario")
		} else {
			stats.mu.Lock()
			stats.Scenarios++
			stats.mu.Unlock()
		}
	}
}

// main runs the carbon platform simulation
// It starts a local API server and simulates multiple concurrent operators
func main() {
	// Start the server in a goroutine
	go func() {
		if err := startServer(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for server to start
	time.Sleep(2 * time.Second)

	// Initialize simulation client
	simClient, err := newSimulationClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize simulation client")
	}

	// Generate random number of carbon flows to run
	targetFlows := rand.Intn(maxFlows-minFlows) + minFlows
	log.Info().Int("target_flows", targetFlows).Msg("Starting simulation")

	stats := &flowStats{
		Categories: make(map[string]int),
		TradeSides: make(map[string]int),
	}
	startTime := time.Now()

	var wg sync.WaitGroup
	flowsPerWorker := targetFlows / numWorkers

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < flowsPerWorker; j++ {
				runCarbonFlow(workerID, simClient, stats)

				// Random sleep between flows
				time.Sleep(time.Duration(rand.Intn(500)) * time.Millisecond)
			}
		}(i)
	}

	wg.Wait()

	// Fetch the final chain state
	var chain struct {
		Height        int64   `json:"height"`
		Blocks        int64   `json:"blocks"`
		Events        int64   `json:"events"`
		WalletBalance float64 `json:"wallet_balance"`
	}
	if err := simClient.get("status", "/api/v1/blockchain/status", &chain); err != nil {
		log.Error().Err(err).Msg("Failed to fetch chain status")
	}

	// Print summary
	duration := time.Since(startTime)
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("CARBON PLATFORM SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf(`
Flow Statistics
---------------
Assets Registered: %d
Tokenized:         %d
Loans Funded:      %d
Loans In Review:   %d
Trades Settled:    %d
Trade Value:       %.2f CNY
Points Earned:     %d
Redemptions:       %d
Scenarios Run:     %d
Failed Flows:      %d
Duration:          %v

Chain State
-----------
Height:            %d
Blocks:            %d
Contract Events:   %d
Wallet Balance:    %.2f CNY

Category Distribution
---------------------
`, stats.AssetsCreated, stats.Tokenized, stats.LoansFunded, stats.LoansInReview,
		stats.Trades, stats.TradeValue, stats.PointsEarned, stats.Redemptions,
		stats.Scenarios, stats.Failed, duration.Round(time.Millisecond),
		chain.Height, chain.Blocks, chain.Events, chain.WalletBalance)

	// Print category distribution with simple ASCII bar chart
	maxCount := 0
	for _, count := range stats.Categories {
		if count > maxCount {
			maxCount = count
		}
	}
	for category, count := range stats.Categories {
		barLength := int(float64(count) / float64(maxCount) * 20)
		bar := strings.Repeat("#", barLength)
		fmt.Printf("%-12s: %s (%d)\n", category, bar, count)
	}

	fmt.Println("\nTrade Side Distribution")
	fmt.Println("-----------------------")
	for side, count := range stats.TradeSides {
		barLength := 0
		if stats.Trades > 0 {
			barLength = int(float64(count) / float64(stats.Trades) * 20)
		}
		bar := strings.Repeat("#", barLength)
		fmt.Printf("%-4s: %s (%d)\n", side, bar, count)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))

	log.Info().
		Int("assets", stats.AssetsCreated).
		Int("trades", stats.Trades).
		Int64("chain_height", chain.Height).
		Float64("wallet_balance", chain.WalletBalance).
		Dur("duration", duration).
		Msg("Simulation completed")

	simClient.printPerformanceStats()
}

// startServer initializes and starts the platform API server
// Sets up all required services, handlers and routes
func startServer() error {
	// Initialize database
	db, err := database.NewDatabase("simulation.db")
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	gen := identifier.NewRandom()

	if err := database.Seed(db, gen, true); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	// Initialize services
	authService := auth.NewService("simulation-secret-key")
	authService.RegisterAPICredentials(auth.DemoAPIKey, auth.DemoAPISecret)

	ledgerService := ledger.NewService(db, gen)
	assetService := assets.NewService(db, ledgerService, gen)
	lendingService := lending.NewService(db, assetService, ledgerService, gen)
	tradingService := trading.NewService(db, assetService, ledgerService, gen)
	pointsService := points.NewService(db, ledgerService, gen)
	contractService := contracts.NewService(ledgerService)

	// Initialize router
	router := gin.Default()
	authHandlers := auth.NewGinHandlers(authService)
	assetHandlers := assets.NewGinHandlers(assetService)
	lendingHandlers := lending.NewGinHandlers(lendingService)
	tradingHandlers := trading.NewGinHandlers(tradingService)
	pointsHandlers := points.NewGinHandlers(pointsService)
	contractHandlers := contracts.NewGinHandlers(contractService)
	ledgerHandlers := ledger.NewGinHandlers(ledgerService)

	// Setup routes. The simulation server skips auth middleware so the
	// driver exercises engine behavior rather than token handling.
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/token", authHandlers.GenerateTokenHandler())

		v1.POST("/assets", assetHandlers.CreateAssetHandler())
		v1.POST("/assets/:asset_id/tokenize", assetHandlers.TokenizeAssetHandler())
		v1.POST("/internal/assets/:asset_id/audit", assetHandlers.AuditAssetHandler())

		v1.POST("/finance/loans", lendingHandlers.CreateLoanHandler())
		v1.POST("/trading/trades", tradingHandlers.CreateTradeHandler())

		v1.POST("/points/earn", pointsHandlers.EarnPointsHandler())
		v1.POST("/points/redeem", pointsHandlers.RedeemPointsHandler())

		v1.POST("/contracts/simulate", contractHandlers.SimulateScenarioHandler())

		v1.GET("/blockchain/status", ledgerHandlers.GetChainStatusHandler())
	}

	// Start the server
	return router.Run(":8080")
}

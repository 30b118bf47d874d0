package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"

	"diamond-node/cache"
	"diamond-node/consensus"
	"diamond-node/core"
	"diamond-node/logger"
	"diamond-node/params"
)

type Config struct {
	Host string
	Port int
}

// Server exposes the chain index over a small JSON REST API.
type Server struct {
	config *Config
	chain  *core.ChainIndex
	params *params.Params
	cache  *cache.Cache
	server *http.Server
}

func NewServer(config *Config, chain *core.ChainIndex, p *params.Params) *Server {
	return &Server{
		config: config,
		chain:  chain,
		params: p,
		cache:  cache.NewCache(),
	}
}

func (s *Server) router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()

	chain := api.PathPrefix("/chain").Subrouter()
	chain.HandleFunc("/status", s.handleStatus).Methods("GET", "OPTIONS")
	chain.HandleFunc("/header/{height}", s.handleHeader).Methods("GET", "OPTIONS")
	chain.HandleFunc("/difficulty", s.handleDifficulty).Methods("GET", "OPTIONS")

	pow := api.PathPrefix("/pow").Subrouter()
	pow.HandleFunc("/validate", s.handleValidate).Methods("POST", "OPTIONS")

	return router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("RPC server error: %v", err)
		}
	}()

	logger.Infof("REST API started on %s", addr)
	return nil
}

func (s *Server) Stop() {
	if s.server != nil {
		s.server.Close()
		logger.Info("REST API stopped")
	}
}

func writeCORS(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == "OPTIONS" {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r, "GET") {
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r, "GET") {
		return
	}
	resp := map[string]interface{}{
		"network":   s.params.Name,
		"height":    s.chain.Height(),
		"totalWork": (*hexutil.Big)(s.chain.TotalWork()),
	}
	if tip := s.chain.Tip(); tip != nil {
		resp["tipHash"] = tip.Hash().Hex()
		resp["tipBits"] = fmt.Sprintf("%08x", tip.Bits())
		resp["tipTime"] = tip.Time()
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r, "GET") {
		return
	}
	heightStr := mux.Vars(r)["height"]

	if cached, ok := s.cache.Get("header:" + heightStr); ok {
		json.NewEncoder(w).Encode(cached)
		return
	}

	height, err := strconv.ParseInt(heightStr, 10, 32)
	if err != nil {
		http.Error(w, "invalid height: "+heightStr, http.StatusBadRequest)
		return
	}
	node := s.chain.NodeAt(int32(height))
	if node == nil {
		http.Error(w, "no block at height "+heightStr, http.StatusNotFound)
		return
	}

	header := node.Header()
	resp := map[string]interface{}{
		"height":     node.Height(),
		"hash":       node.Hash().Hex(),
		"version":    header.Version,
		"parentHash": header.PrevBlock.Hex(),
		"merkleRoot": header.MerkleRoot.Hex(),
		"timestamp":  header.Timestamp,
		"bits":       fmt.Sprintf("%08x", header.Bits),
		"nonce":      header.Nonce,
		"workSum":    (*hexutil.Big)(node.WorkSum()),
	}
	// Only settled heights are cached; the tip can still be extended.
	if node.Height() < s.chain.Height() {
		s.cache.SetDefault("header:"+heightStr, resp)
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleDifficulty(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r, "GET") {
		return
	}
	headerTime := int64(0)
	if tip := s.chain.Tip(); tip != nil {
		headerTime = tip.Time() + s.params.PowTargetSpacing
	}
	if ts := r.URL.Query().Get("time"); ts != "" {
		t, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			http.Error(w, "invalid time: "+ts, http.StatusBadRequest)
			return
		}
		headerTime = t
	}
	bits := s.chain.NextRequiredBits(headerTime)
	target, _, _ := consensus.CompactToBig(bits)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"nextBits":   fmt.Sprintf("%08x", bits),
		"nextTarget": (*hexutil.Big)(target),
		"headerTime": headerTime,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r, "POST") {
		return
	}
	var req struct {
		Hash string `json:"hash"`
		Bits string `json:"bits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request format: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Hash) == 0 || len(req.Bits) == 0 {
		http.Error(w, "hash and bits are required", http.StatusBadRequest)
		return
	}
	if len(common.FromHex(req.Hash)) != common.HashLength {
		http.Error(w, "invalid hash format", http.StatusBadRequest)
		return
	}
	hash := common.HexToHash(req.Hash)
	bits64, err := strconv.ParseUint(req.Bits, 16, 32)
	if err != nil {
		http.Error(w, "invalid bits format", http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"valid": consensus.CheckProofOfWork(hash, uint32(bits64), s.params),
	})
}

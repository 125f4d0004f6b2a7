package httpjson

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/midpay/midpay/api/common"
	"github.com/midpay/midpay/api/common/errcode"
	"github.com/midpay/midpay/api/ratelimiter"
	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/config"
	"github.com/midpay/midpay/escrow"
	"github.com/midpay/midpay/util/log"
)

type RPCServer struct {
	// keeps track of every function to be called on specific rpc call
	mainMux ServeMux

	listener string
	auth     *APIKeyAuth

	escrow *escrow.Manager
	ledger *chain.Blockchain

	httpServer *http.Server
}

type ServeMux struct {
	sync.RWMutex

	// collection of Handlers
	m map[string]common.Handler

	// will be called when the request contains no implemented method
	defaultFunction func(http.ResponseWriter, *http.Request)
}

// NewServer will create a new RPC server instance.
func NewServer(manager *escrow.Manager, ledger *chain.Blockchain) *RPCServer {
	return &RPCServer{
		mainMux: ServeMux{
			m: make(map[string]common.Handler),
		},
		listener: ":" + strconv.Itoa(int(config.Parameters.HttpJsonPort)),
		auth:     NewAPIKeyAuth(config.Parameters.RPCKeys),
		escrow:   manager,
		ledger:   ledger,
	}
}

func (s *RPCServer) GetEscrow() *escrow.Manager {
	return s.escrow
}

func (s *RPCServer) GetLedger() *chain.Blockchain {
	return s.ledger
}

func (s *RPCServer) write(w http.ResponseWriter, data []byte) {
	w.Header().Add("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("content-type", "application/json;charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(data)
}

func (s *RPCServer) writeError(w http.ResponseWriter, id interface{}, code errcode.ErrCode, data interface{}) {
	resp, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    -code,
			"message": errcode.Message(code),
			"data":    data,
		},
		"id": id,
	})
	if err != nil {
		log.Error("HTTP JSON RPC writeError - json.Marshal: ", err)
		return
	}
	s.write(w, resp)
}

// Handle answers one JSON RPC call.
func (s *RPCServer) Handle(w http.ResponseWriter, r *http.Request) {
	s.mainMux.RLock()
	defer s.mainMux.RUnlock()

	// JSON RPC commands should be POSTs
	if r.Method != "POST" {
		if s.mainMux.defaultFunction != nil {
			s.mainMux.defaultFunction(w, r)
		} else {
			log.Warning("HTTP JSON RPC Handle - Method!=\"POST\"")
		}
		return
	}

	if !s.auth.CheckAuth(r) {
		log.Warningf("HTTP JSON RPC Handle - bad api key from %s", r.RemoteAddr)
		s.writeError(w, nil, errcode.INVALID_TOKEN, nil)
		return
	}

	if config.Parameters.RPCRateLimit > 0 {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		limiter := ratelimiter.GetLimiter("rpc:"+host, config.Parameters.RPCRateLimit, config.Parameters.RPCRateBurst)
		if !limiter.Allow() {
			s.writeError(w, nil, errcode.SERVICE_CEILING, nil)
			return
		}
	}

	if r.Body == nil {
		log.Warning("HTTP JSON RPC Handle - Request body is nil")
		s.writeError(w, nil, errcode.ILLEGAL_DATAFORMAT, nil)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		log.Error("HTTP JSON RPC Handle - ioutil.ReadAll: ", err)
		return
	}
	request := make(map[string]interface{})
	if err := json.Unmarshal(body, &request); err != nil {
		log.Error("HTTP JSON RPC Handle - json.Unmarshal: ", err)
		s.writeError(w, nil, errcode.ILLEGAL_DATAFORMAT, nil)
		return
	}

	method, ok := request["method"].(string)
	if !ok {
		s.writeError(w, request["id"], errcode.INVALID_METHOD, nil)
		return
	}
	params, ok := request["params"].(map[string]interface{})
	if !ok {
		params = map[string]interface{}{}
	}

	function, ok := s.mainMux.m[method]
	if !ok {
		log.Warning("HTTP JSON RPC Handle - No function to call for ", method)
		data, err := json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"error": map[string]interface{}{
				"code":    -32601,
				"message": "Method not found",
				"data":    "The called method was not found on the server",
			},
			"id": request["id"],
		})
		if err != nil {
			log.Error("HTTP JSON RPC Handle - json.Marshal: ", err)
			return
		}
		s.write(w, data)
		return
	}

	response := function(s, params, r.Context())
	var data []byte
	code := response["error"].(errcode.ErrCode)
	if code != errcode.SUCCESS {
		data, err = json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"error": map[string]interface{}{
				"code":    -code,
				"message": errcode.Message(code),
				"data":    response["resultOrData"],
			},
			"id": request["id"],
		})
	} else {
		data, err = json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"result":  response["resultOrData"],
			"id":      request["id"],
		})
	}
	if err != nil {
		log.Error("HTTP JSON RPC Handle - json.Marshal: ", err)
		return
	}
	s.write(w, data)
}

// HandleFunc registers a function for a specific rpc method.
func (s *RPCServer) HandleFunc(pattern string, handler common.Handler) {
	s.mainMux.Lock()
	defer s.mainMux.Unlock()
	s.mainMux.m[pattern] = handler
}

// SetDefaultFunc registers a fallback for requests that are not JSON RPC.
func (s *RPCServer) SetDefaultFunc(def func(http.ResponseWriter, *http.Request)) {
	s.mainMux.defaultFunction = def
}

// Start serves JSON RPC until Stop is called. It blocks.
func (s *RPCServer) Start() error {
	for name, handler := range common.InitialAPIHandlers {
		if handler.IsAccessableByJsonrpc() {
			s.HandleFunc(name, handler.Handler)
		}
	}

	listener, err := net.Listen("tcp", s.listener)
	if err != nil {
		log.Error("net.Listen: ", err.Error())
		return err
	}

	rpcServeMux := http.NewServeMux()
	rpcServeMux.HandleFunc("/", s.Handle)
	s.httpServer = &http.Server{
		Handler: rpcServeMux,
	}
	log.Infof("JSON RPC listening on %s", s.listener)
	if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight calls.
func (s *RPCServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

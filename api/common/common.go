package common

import (
	"strconv"

	"github.com/midpay/midpay/api/common/errcode"
	"github.com/midpay/midpay/chain"
	"github.com/midpay/midpay/common"
	"github.com/midpay/midpay/escrow"
)

// Serverer is what a transport hands to the API handlers.
type Serverer interface {
	GetEscrow() *escrow.Manager
	GetLedger() *chain.Blockchain
}

// Response for json API.
// errcode: The error code to return to client, see api/common/errcode
// resultOrData: If the errcode is 0, then data is used as the 'result' of
// JsonRPC. Otherwise, as an extra error message to 'data' of JsonRPC.
func respPacking(code errcode.ErrCode, resultOrData interface{}) map[string]interface{} {
	return map[string]interface{}{
		"error":        code,
		"resultOrData": resultOrData,
	}
}

func RespPacking(result interface{}, code errcode.ErrCode) map[string]interface{} {
	return respPacking(code, result)
}

// respError packs a domain error with its mapped code.
func respError(err error) map[string]interface{} {
	return respPacking(errcode.FromError(err), err.Error())
}

// paramString reads a required string parameter.
func paramString(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key].(string)
	return v, ok && v != ""
}

// paramAmount reads an amount given either as a decimal string or a JSON
// number.
func paramAmount(params map[string]interface{}, key string) (common.Fixed64, bool) {
	switch v := params[key].(type) {
	case string:
		f, err := common.StringToFixed64(v)
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		f, err := common.StringToFixed64(strconv.FormatFloat(v, 'f', -1, 64))
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

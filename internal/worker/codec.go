package worker

import (
	"encoding/json"
	"fmt"
)

type typeHeader struct {
	Type Tag `json:"type"`
}

// DecodeRequest parses a `{"type": <tag>, ...payload}` message.
func DecodeRequest(data []byte) (Request, error) {
	var header typeHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode message header: %w", err)
	}

	var (
		req Request
		err error
	)
	switch header.Type {
	case TagEstimatedBlocks:
		var r EstimatedBlocksRequest
		err = json.Unmarshal(data, &r)
		req = r
	case TagMintedBlocks:
		var r MintedBlocksRequest
		err = json.Unmarshal(data, &r)
		req = r
	case TagPerformance:
		var r PerformanceRequest
		err = json.Unmarshal(data, &r)
		req = r
	case TagPoolRewards:
		var r PoolRewardsRequest
		err = json.Unmarshal(data, &r)
		req = r
	case TagFilterAssets:
		var r FilterAssetsRequest
		err = json.Unmarshal(data, &r)
		req = r
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, header.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", header.Type, err)
	}
	return req, nil
}

// EncodeRequest renders a request in wire form.
func EncodeRequest(req Request) ([]byte, error) {
	return withType(req.Tag(), req)
}

// EncodeReply renders a reply in wire form. Failed replies carry an "error"
// field and the request tag.
func EncodeReply(reply Reply) ([]byte, error) {
	if reply.Err != nil {
		return json.Marshal(map[string]any{
			"type":  reply.RequestTag,
			"seq":   reply.Seq,
			"error": reply.Err.Error(),
		})
	}
	return withType(reply.Response.Tag(), reply.Response)
}

func withType(tag Tag, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", tag, err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", tag, err)
	}
	typ, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}

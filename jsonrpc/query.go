package jsonrpc

import (
	"fmt"

	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
)

// EventQuery is a query to filter vault events. All criteria are
// optional and combine with AND; a chain ID criterion matches on either
// end of the transfer.
type EventQuery struct {
	Types   []vault.EventType
	ChainID *uint64
	TokenID *types.Address

	fromIndex *uint64
	toIndex   *uint64
}

var eventTypesByName = map[string]vault.EventType{
	vault.DepositReceived.String():  vault.DepositReceived,
	vault.ValueReleased.String():    vault.ValueReleased,
	vault.TokenSwept.String():       vault.TokenSwept,
	vault.MessageReceived.String():  vault.MessageReceived,
	vault.MessageAllocated.String(): vault.MessageAllocated,
	vault.ConfigChanged.String():    vault.ConfigChanged,
}

func eventTypeByName(name string) (vault.EventType, error) {
	typ, ok := eventTypesByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown event type %s", name)
	}

	return typ, nil
}

// addTypes adds event type names to the query criteria
func (q *EventQuery) addTypes(names ...string) error {
	for _, name := range names {
		typ, err := eventTypeByName(name)
		if err != nil {
			return err
		}

		q.Types = append(q.Types, typ)
	}

	return nil
}

func decodeEventQueryFromInterface(i interface{}) (*EventQuery, error) {
	// once the query is decoded as map[string]interface we cannot use unmarshal json
	raw, err := jsonCodec.Marshal(i)
	if err != nil {
		return nil, err
	}

	query := &EventQuery{}
	if err := jsonCodec.Unmarshal(raw, &query); err != nil {
		return nil, err
	}

	return query, nil
}

// UnmarshalJSON decodes a json object
func (q *EventQuery) UnmarshalJSON(data []byte) error {
	var obj struct {
		Types     []string       `json:"types"`
		ChainID   *argUint64     `json:"chainId"`
		TokenID   *types.Address `json:"tokenId"`
		FromIndex *argUint64     `json:"fromIndex"`
		ToIndex   *argUint64     `json:"toIndex"`
	}

	if err := jsonCodec.Unmarshal(data, &obj); err != nil {
		return err
	}

	if err := q.addTypes(obj.Types...); err != nil {
		return err
	}

	if obj.ChainID != nil {
		q.ChainID = (*uint64)(obj.ChainID)
	}

	q.TokenID = obj.TokenID

	if obj.FromIndex != nil {
		q.fromIndex = (*uint64)(obj.FromIndex)
	}

	if obj.ToIndex != nil {
		q.toIndex = (*uint64)(obj.ToIndex)
	}

	return nil
}

// Match returns whether the event satisfies the query criteria
func (q *EventQuery) Match(evnt *vault.Event) bool {
	if len(q.Types) > 0 {
		match := false

		for _, typ := range q.Types {
			if evnt.Type == typ {
				match = true
			}
		}

		if !match {
			return false
		}
	}

	if q.ChainID != nil {
		if evnt.SourceChainID != *q.ChainID && evnt.DestChainID != *q.ChainID {
			return false
		}
	}

	if q.TokenID != nil && evnt.TokenID != *q.TokenID {
		return false
	}

	return true
}

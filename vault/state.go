package vault

import (
	"encoding/binary"
	"fmt"
	"math/big"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/edge-vault/types"
)

// State key prefixes. Each entry is one namespace byte followed by the
// big-endian encoded identifiers of the record.
var (
	chainPrefix   = []byte{'c'} // chain whitelist membership
	tokenPrefix   = []byte{'t'} // token whitelist membership
	poolPrefix    = []byte{'f'} // funding pool balances, chain and token
	feePrefix     = []byte{'e'} // accrued fees, per chain
	noncePrefix   = []byte{'n'} // message nonce counter
	paramsPrefix  = []byte{'p'} // minimum transfer amount and fee rate
	relayerPrefix = []byte{'r'} // authorized relayer address
	chainIDPrefix = []byte{'i'} // local chain identifier
)

func chainKey(chainID uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = chainPrefix[0]
	binary.BigEndian.PutUint64(buf[1:], chainID)

	return buf
}

func tokenKey(tokenID types.Address) []byte {
	return append(tokenPrefix, tokenID.Bytes()...)
}

func poolKey(chainID uint64, tokenID types.Address) []byte {
	buf := make([]byte, 9, 9+types.AddressLength)
	buf[0] = poolPrefix[0]
	binary.BigEndian.PutUint64(buf[1:], chainID)

	return append(buf, tokenID.Bytes()...)
}

func feeKey(chainID uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = feePrefix[0]
	binary.BigEndian.PutUint64(buf[1:], chainID)

	return buf
}

// stateReader is satisfied by both the running transaction and the
// committed immutable trees handed out to concurrent readers
type stateReader interface {
	Get(k []byte) (interface{}, bool)
}

func readBytes(r stateReader, key []byte) ([]byte, bool) {
	v, ok := r.Get(key)
	if !ok {
		return nil, false
	}

	data, ok := v.([]byte)

	return data, ok
}

func readBig(r stateReader, key []byte) *big.Int {
	data, ok := readBytes(r, key)
	if !ok {
		return big.NewInt(0)
	}

	return new(big.Int).SetBytes(data)
}

func readBalance(r stateReader, chainID uint64, tokenID types.Address) *big.Int {
	return readBig(r, poolKey(chainID, tokenID))
}

func readFees(r stateReader, chainID uint64) *big.Int {
	return readBig(r, feeKey(chainID))
}

func readNonce(r stateReader) uint64 {
	data, ok := readBytes(r, noncePrefix)
	if !ok {
		return 0
	}

	return binary.BigEndian.Uint64(data)
}

func readChainAllowed(r stateReader, chainID uint64) bool {
	_, ok := r.Get(chainKey(chainID))

	return ok
}

func readTokenAllowed(r stateReader, tokenID types.Address) bool {
	_, ok := r.Get(tokenKey(tokenID))

	return ok
}

func readRelayer(r stateReader) types.Address {
	data, ok := readBytes(r, relayerPrefix)
	if !ok {
		return types.ZeroAddress
	}

	return types.BytesToAddress(data)
}

func readChainID(r stateReader) uint64 {
	data, ok := readBytes(r, chainIDPrefix)
	if !ok {
		return 0
	}

	return binary.BigEndian.Uint64(data)
}

func readParams(r stateReader) *params {
	data, ok := readBytes(r, paramsPrefix)
	if !ok {
		return &params{minAmount: big.NewInt(0)}
	}

	p := &params{}
	if err := p.unmarshal(data); err != nil {
		// the record is validated on restore and only written by this
		// package afterwards
		panic(fmt.Sprintf("corrupt params record: %v", err))
	}

	return p
}

// params are the tunable transfer checks. FeeRate is expressed in parts
// per thousand and intentionally not capped at the denominator.
type params struct {
	minAmount *big.Int
	feeRate   uint64
}

func (p *params) marshal() []byte {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	vv := ar.NewArray()
	vv.Set(ar.NewBigInt(p.minAmount))
	vv.Set(ar.NewUint(p.feeRate))

	return vv.MarshalTo(nil)
}

func (p *params) unmarshal(data []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(data)
	if err != nil {
		return err
	}

	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 2 {
		return fmt.Errorf("incorrect number of elements to decode params, expected 2 but found %d", len(elems))
	}

	p.minAmount = new(big.Int)
	if err = elems[0].GetBigInt(p.minAmount); err != nil {
		return err
	}

	if p.feeRate, err = elems[1].GetUint64(); err != nil {
		return err
	}

	return nil
}

// ledger is the in-memory vault state: whitelists, funding and fee
// pools, the message nonce, the transfer parameters and the relayer
// identity, all kept in an immutable radix tree. Mutations run on a
// transaction that supports snapshots and rollback; committed trees are
// safe for concurrent readers.
type ledger struct {
	snapshots []*iradix.Tree
	txn       *iradix.Txn
}

func newLedger() *ledger {
	return &ledger{
		snapshots: []*iradix.Tree{},
		txn:       iradix.New().Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (l *ledger) Snapshot() int {
	t := l.txn.CommitOnly()

	id := len(l.snapshots)
	l.snapshots = append(l.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot
func (l *ledger) RevertToSnapshot(id int) {
	if id >= len(l.snapshots) {
		panic("snapshot id out of range")
	}

	tree := l.snapshots[id]
	l.txn = tree.Txn()
}

// commit seals the running transaction into an immutable tree. The
// transaction stays usable for further mutations.
func (l *ledger) commit() *iradix.Tree {
	return l.txn.CommitOnly()
}

func (l *ledger) balance(chainID uint64, tokenID types.Address) *big.Int {
	return readBalance(l.txn, chainID, tokenID)
}

// credit adds amount to the funding pool balance, creating the pool
// entry on first reference
func (l *ledger) credit(chainID uint64, tokenID types.Address, amount *big.Int) {
	balance := l.balance(chainID, tokenID)
	balance.Add(balance, amount)

	l.txn.Insert(poolKey(chainID, tokenID), balance.Bytes())
}

// debit subtracts amount from the funding pool balance. The pool never
// goes negative.
func (l *ledger) debit(chainID uint64, tokenID types.Address, amount *big.Int) error {
	balance := l.balance(chainID, tokenID)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	balance.Sub(balance, amount)
	l.txn.Insert(poolKey(chainID, tokenID), balance.Bytes())

	return nil
}

func (l *ledger) fees(chainID uint64) *big.Int {
	return readFees(l.txn, chainID)
}

// accrueFee adds amount to the per chain fee counter, independently of
// the funding pool
func (l *ledger) accrueFee(chainID uint64, amount *big.Int) {
	fees := l.fees(chainID)
	fees.Add(fees, amount)

	l.txn.Insert(feeKey(chainID), fees.Bytes())
}

func (l *ledger) nonce() uint64 {
	return readNonce(l.txn)
}

func (l *ledger) setNonce(nonce uint64) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, nonce)

	l.txn.Insert(noncePrefix, buf)
}

func (l *ledger) isChainAllowed(chainID uint64) bool {
	return readChainAllowed(l.txn, chainID)
}

func (l *ledger) setChainAllowed(chainID uint64, allowed bool) {
	if allowed {
		l.txn.Insert(chainKey(chainID), []byte{1})
	} else {
		l.txn.Delete(chainKey(chainID))
	}
}

func (l *ledger) isTokenAllowed(tokenID types.Address) bool {
	return readTokenAllowed(l.txn, tokenID)
}

func (l *ledger) setTokenAllowed(tokenID types.Address, allowed bool) {
	if allowed {
		l.txn.Insert(tokenKey(tokenID), []byte{1})
	} else {
		l.txn.Delete(tokenKey(tokenID))
	}
}

func (l *ledger) getParams() *params {
	return readParams(l.txn)
}

func (l *ledger) setParams(p *params) {
	l.txn.Insert(paramsPrefix, p.marshal())
}

func (l *ledger) relayer() types.Address {
	return readRelayer(l.txn)
}

func (l *ledger) setRelayer(addr types.Address) {
	l.txn.Insert(relayerPrefix, addr.Bytes())
}

func (l *ledger) setChainID(chainID uint64) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, chainID)

	l.txn.Insert(chainIDPrefix, buf)
}

// marshal dumps the full state as a flat RLP list of key and value
// pairs. This is the record written to durable storage after every
// successful operation.
func (l *ledger) marshal() []byte {
	ar := fastrlp.DefaultArenaPool.Get()
	defer fastrlp.DefaultArenaPool.Put(ar)

	vv := ar.NewArray()

	l.commit().Root().Walk(func(k []byte, v interface{}) bool {
		vv.Set(ar.NewCopyBytes(k))
		vv.Set(ar.NewCopyBytes(v.([]byte)))

		return false
	})

	return vv.MarshalTo(nil)
}

// unmarshal replaces the ledger content with a state record produced by
// marshal
func (l *ledger) unmarshal(data []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(data)
	if err != nil {
		return err
	}

	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems)%2 != 0 {
		return fmt.Errorf("state record has %d elements, expected key and value pairs", len(elems))
	}

	txn := iradix.New().Txn()

	for i := 0; i < len(elems); i += 2 {
		key, err := elems[i].GetBytes(nil)
		if err != nil {
			return err
		}

		value, err := elems[i+1].GetBytes(nil)
		if err != nil {
			return err
		}

		txn.Insert(key, value)
	}

	l.snapshots = []*iradix.Tree{}
	l.txn = txn

	// validate the composite records eagerly so later reads cannot hit
	// a corrupt entry
	if data, ok := readBytes(l.txn, paramsPrefix); ok {
		if err := (&params{}).unmarshal(data); err != nil {
			return fmt.Errorf("corrupt params record: %w", err)
		}
	}

	return nil
}

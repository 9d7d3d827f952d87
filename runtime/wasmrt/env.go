package wasmrt

// Storage is the contract's key-value store.
type Storage interface {
	Get(key []byte) []byte
	Set(key, value []byte)
	Remove(key []byte)
}

// Querier answers raw chain queries.
type Querier interface {
	RawQuery(request []byte) ([]byte, error)
}

// QuerierFunc adapts a function to Querier.
type QuerierFunc func(request []byte) ([]byte, error)

func (f QuerierFunc) RawQuery(request []byte) ([]byte, error) { return f(request) }

// Deps bundles host services.
type Deps struct {
	Storage Storage
	Querier Querier
}

type BlockInfo struct {
	Height uint64 `json:"height"`
	// Time is nanoseconds since the Unix epoch.
	Time    uint64 `json:"time"`
	ChainID string `json:"chain_id"`
}

type ContractInfo struct {
	Address Addr `json:"address"`
}

// Env describes the block and the executing contract.
type Env struct {
	Block    BlockInfo    `json:"block"`
	Contract ContractInfo `json:"contract"`
}

// MessageInfo is the sender and funds of an instantiate or exec call.
type MessageInfo struct {
	Sender Addr   `json:"sender"`
	Funds  []Coin `json:"funds"`
}

// Handler contexts, one per message kind.
type (
	InstantiateCtx struct {
		Deps
		Env  Env
		Info MessageInfo
	}
	ExecCtx struct {
		Deps
		Env  Env
		Info MessageInfo
	}
	QueryCtx struct {
		Deps
		Env Env
	}
	SudoCtx struct {
		Deps
		Env Env
	}
	MigrateCtx struct {
		Deps
		Env Env
	}
	ReplyCtx struct {
		Deps
		Env Env
	}
)

// MemoryStorage is an in-memory Storage for tests and the reference machine.
type MemoryStorage map[string][]byte

func (m MemoryStorage) Get(key []byte) []byte { return m[string(key)] }

func (m MemoryStorage) Set(key, value []byte) { m[string(key)] = append([]byte(nil), value...) }

func (m MemoryStorage) Remove(key []byte) { delete(m, string(key)) }

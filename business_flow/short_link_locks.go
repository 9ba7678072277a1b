package businessflow

import "sync"

// Registry mutations are whole-blob read-modify-writes against the durable
// store; this mutex serializes them within one process. Writers in other
// processes still race at the blob level (last writer wins).
var (
	shortLinkRegistryMutex sync.Mutex
)

func lockShortLinkRegistry() {
	shortLinkRegistryMutex.Lock()
}

func unlockShortLinkRegistry() {
	shortLinkRegistryMutex.Unlock()
}

package model

import "coachtui/storage"

// Message represents a chat message in a conversation
type Message = storage.Message

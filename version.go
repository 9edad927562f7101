package sdk

// Version is the published SDK version.
// 0.2.0: Uploads are replayable after a token refresh; Overview fans out over several organizations.
// 0.1.0: Initial console client with shared token refresh and session teardown.
const Version = "0.2.0"

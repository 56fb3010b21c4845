package common

// TimersDocumentKey is the default object key of the timers document.
const TimersDocumentKey = "data/timers.json"

// JSONContentType is the content type stored alongside the timers document.
const JSONContentType = "application/json"

// AuthorizationHeaderName carries "Bearer <token>" on mutating requests.
const AuthorizationHeaderName = "Authorization"

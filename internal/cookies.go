package internal

// COOKIE_SESSION_TOKEN_NAME holds the sealed session JWT.
const COOKIE_SESSION_TOKEN_NAME = "token"

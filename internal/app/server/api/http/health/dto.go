package health

type Input struct{}

type Output struct {
	Body Response
}

// Response reports the server state and the document backend it runs on.
type Response struct {
	Status  string `json:"status" example:"OK" doc:"Health status of the service"`
	Storage string `json:"storage,omitempty" example:"postgres" doc:"Document backend in use"`
}

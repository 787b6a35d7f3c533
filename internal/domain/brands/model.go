package brands

type Brand struct {
	ID   int64
	Name string
}

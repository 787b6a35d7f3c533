package products

type Product struct {
	ID          int64
	Name        string
	Code        string // пустая строка = без кода (в сторе NULL)
	Description string
	BrandID     int64 // 0 = без бренда
	Brand       string
	Quantity    int64
	Location    string
}

// PickerItem — укороченная строка для выпадающих списков UI.
type PickerItem struct {
	ID   int64
	Name string
	Code string
}

package seed

const (
	SampleUserName  = "Sample User"
	SampleUserEmail = "sample@storefront.local"
	// SampleUserPassword is only ever stored hashed.
	SampleUserPassword = "sample-password"
)

type categorySeed struct {
	Name     string
	Children []string
}

type productSeed struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Category    string
	Attributes  map[string]any
}

var categories = []categorySeed{
	{Name: "Electronics", Children: []string{"Computers", "Smartphones", "Televisions"}},
	{Name: "Clothing", Children: []string{"Men's Clothing", "Women's Clothing"}},
	{Name: "Shoes", Children: []string{"Sports Shoes", "Casual Shoes"}},
	{Name: "Home Goods", Children: []string{"Furniture", "Decor", "Kitchen"}},
	{Name: "Kids Goods", Children: []string{"Toys", "Kids Clothing"}},
}

var products = []productSeed{
	{"Laptop", "Powerful laptop for work and play", "50000.00", 10, "Computers", map[string]any{"color": "black", "processor": "Intel i7", "ram": "16GB"}},
	{"Smartphone", "Modern smartphone with a great camera", "25000.00", 15, "Smartphones", map[string]any{"color": "white", "camera": "12MP", "battery": "4000mAh"}},
	{"Television", "Ultra HD smart TV", "35000.00", 8, "Televisions", map[string]any{"size": "55 inch", "type": "LED", "resolution": "4K"}},
	{"T-Shirt", "Stylish men's t-shirt", "1500.00", 50, "Men's Clothing", map[string]any{"size": "M", "color": "blue"}},
	{"Dress", "Elegant evening dress", "3000.00", 30, "Women's Clothing", map[string]any{"size": "S", "color": "red"}},
	{"Sneakers", "Comfortable running sneakers", "4000.00", 25, "Sports Shoes", map[string]any{"size": "42", "color": "black"}},
	{"Sandals", "Summer sandals", "2000.00", 40, "Casual Shoes", map[string]any{"size": "38", "color": "beige"}},
	{"Office Chair", "Comfortable office chair", "8000.00", 15, "Furniture", map[string]any{"color": "black", "material": "leather"}},
	{"Bed", "Double bed with mattress", "25000.00", 20, "Furniture", map[string]any{"material": "wood", "size": "King"}},
	{"Toy Robot", "Interactive robot for kids", "1500.00", 50, "Toys", map[string]any{"battery": "AA", "color": "red"}},
	{"Kids T-Shirt", "Bright t-shirt for kids", "800.00", 60, "Kids Clothing", map[string]any{"size": "L", "color": "light blue"}},
	{"Table Lamp", "Warm light desk lamp", "1200.00", 35, "Decor", map[string]any{"color": "white", "bulb": "E27"}},
}

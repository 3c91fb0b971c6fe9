package ledger

// The ten sample orders every session starts from. Reset rebuilds this
// exact set, so admin walkthroughs and tests can rely on the ids.
var seedOrders = []Order{
	{
		ID:               "12345",
		Status:           OrderShipped,
		Items:            []string{"Blue Widget", "Red Gadget"},
		OrderDate:        "2025-09-25",
		ShippedDate:      "2025-09-26",
		ExpectedDelivery: "2025-10-05",
		TrackingNumber:   "1Z999AA10123456784",
		Total:            89.99,
		CustomerID:       "CUST001",
	},
	{
		ID:               "67890",
		Status:           OrderProcessing,
		Items:            []string{"Green Doohickey"},
		OrderDate:        "2025-10-01",
		ExpectedDelivery: "2025-10-08",
		Total:            45.50,
		CustomerID:       "CUST002",
	},
	{
		ID:               "11111",
		Status:           OrderDelivered,
		Items:            []string{"Purple Thingamajig"},
		OrderDate:        "2025-09-20",
		ShippedDate:      "2025-09-21",
		DeliveredDate:    "2025-09-24",
		ExpectedDelivery: "2025-09-25",
		TrackingNumber:   "1Z999AA10987654321",
		Total:            129.99,
		CustomerID:       "CUST003",
	},
	{
		ID:               "22222",
		Status:           OrderShipped,
		Items:            []string{"Yellow Contraption", "Orange Widget"},
		OrderDate:        "2025-09-28",
		ShippedDate:      "2025-09-29",
		ExpectedDelivery: "2025-10-06",
		TrackingNumber:   "1Z999AA11122233344",
		Total:            199.99,
		CustomerID:       "CUST004",
	},
	{
		ID:               "33333",
		Status:           OrderProcessing,
		Items:            []string{"Silver Gadget"},
		OrderDate:        "2025-10-02",
		ExpectedDelivery: "2025-10-09",
		Total:            75.00,
		CustomerID:       "CUST005",
	},
	{
		ID:               "44444",
		Status:           OrderDelivered,
		Items:            []string{"Gold Device", "Platinum Tool"},
		OrderDate:        "2025-09-15",
		ShippedDate:      "2025-09-16",
		DeliveredDate:    "2025-09-19",
		ExpectedDelivery: "2025-09-20",
		TrackingNumber:   "1Z999AA55566677788",
		Total:            299.99,
		CustomerID:       "CUST006",
	},
	{
		ID:               "55555",
		Status:           OrderShipped,
		Items:            []string{"Black Instrument"},
		OrderDate:        "2025-09-30",
		ShippedDate:      "2025-10-01",
		ExpectedDelivery: "2025-10-07",
		TrackingNumber:   "1Z999AA99900011122",
		Total:            149.99,
		CustomerID:       "CUST007",
	},
	{
		ID:               "66666",
		Status:           OrderProcessing,
		Items:            []string{"White Apparatus", "Gray Component"},
		OrderDate:        "2025-10-03",
		ExpectedDelivery: "2025-10-10",
		Total:            225.50,
		CustomerID:       "CUST008",
	},
	{
		ID:               "77777",
		Status:           OrderDelivered,
		Items:            []string{"Brown Mechanism"},
		OrderDate:        "2025-09-10",
		ShippedDate:      "2025-09-11",
		DeliveredDate:    "2025-09-14",
		ExpectedDelivery: "2025-09-15",
		TrackingNumber:   "1Z999AA33344455566",
		Total:            89.99,
		CustomerID:       "CUST009",
	},
	{
		ID:               "88888",
		Status:           OrderShipped,
		Items:            []string{"Pink Accessory", "Teal Fixture", "Cyan Part"},
		OrderDate:        "2025-09-27",
		ShippedDate:      "2025-09-28",
		ExpectedDelivery: "2025-10-05",
		TrackingNumber:   "1Z999AA77788899900",
		Total:            349.99,
		CustomerID:       "CUST010",
	},
}

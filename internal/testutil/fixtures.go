package testutil

// Response bodies served by MockNASA.
const (
	MarsPhotosFixture = `{"photos":[{"id":102693,"sol":1000,"camera":{"id":20,"name":"FHAZ","rover_id":5,"full_name":"Front Hazard Avoidance Camera"},"img_src":"https://mars.nasa.gov/msl-raw-images/fhaz.JPG","earth_date":"2015-05-30","rover":{"id":5,"name":"Curiosity","landing_date":"2012-08-06","launch_date":"2011-11-26","status":"active"}}]}`

	MarsRoversFixture = `{"rovers":[{"id":5,"name":"Curiosity","landing_date":"2012-08-06","launch_date":"2011-11-26","status":"active","max_sol":4000,"max_date":"2024-01-01","total_photos":695000,"cameras":[{"name":"FHAZ","full_name":"Front Hazard Avoidance Camera"}]}]}`

	SearchFixture = `{"collection":{"version":"1.0","href":"https://images-api.nasa.gov/search?q=apollo","items":[{"href":"https://images-assets.nasa.gov/image/as11-40-5874/collection.json","data":[{"center":"JSC","title":"Apollo 11 Mission image","nasa_id":"as11-40-5874","date_created":"1969-07-20T00:00:00Z","media_type":"image","description":"Buzz Aldrin on the Moon"}],"links":[{"href":"https://images-assets.nasa.gov/image/as11-40-5874/as11-40-5874~thumb.jpg","rel":"preview","render":"image"}]}],"metadata":{"total_hits":1}}}`

	EPICFixture = `[{"identifier":"20240101003633","caption":"This image was taken by NASA's EPIC camera","image":"epic_1b_20240101003633","version":"03","date":"2024-01-01 00:31:45","centroid_coordinates":{"lat":-22.1,"lon":161.4}}]`

	NewsFixture = `[{"id":"1","title":"Webb finds water","date":"2024-01-01","summary":"A summary.","url":"https://www.nasa.gov/news/1","image_url":"https://www.nasa.gov/news/1.jpg","source":"NASA","tags":["webb"]}]`
)

package prompts

const systemInstruction = `You are a sneaker recognition expert. From the image, identify the sneaker's official Brand, Model, and Colorway. Also provide a plausible style code (SKU). Return ONLY a valid JSON object with keys: 'name', 'brand', and 'style_code'. Example: {"name": "Nike Air Jordan 1 Retro High OG 'Lost & Found'", "brand": "Nike", "style_code": "DZ5485-612"}`

const identifyInstruction = "Identify this sneaker and provide details in JSON format."

// SystemInstruction returns the system prompt attached to every identification session.
func SystemInstruction() string {
	return systemInstruction
}

// IdentifyInstruction returns the user turn sent alongside the sneaker photo.
func IdentifyInstruction() string {
	return identifyInstruction
}

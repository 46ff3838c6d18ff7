package codegen

import "text/template"

// nextjsTemplate emits an App Router route handler pair.
var nextjsTemplate = template.Must(template.New("nextjs").Parse(`// app/api/{{.Name}}/route.ts
const BASE_URL = '{{.URL}}';
{{if .AllowGet}}
export async function GET() {
  const response = await fetch(BASE_URL);
  return Response.json(await response.json(), { status: response.status });
}
{{end}}{{if .AllowPost}}
export async function POST(request: Request) {
  const response = await fetch(BASE_URL, {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify(await request.json()),
  });
  return Response.json(await response.json(), { status: response.status });
}
{{end}}
// app/api/{{.Name}}/[id]/route.ts
{{if .AllowGetByID}}
export async function GET(
  _request: Request,
  { params }: { params: { id: string } },
) {
  const response = await fetch(` + "`${BASE_URL}/${params.id}`" + `);
  return Response.json(await response.json(), { status: response.status });
}
{{end}}{{if .AllowPut}}
export async function PUT(
  request: Request,
  { params }: { params: { id: string } },
) {
  const response = await fetch(` + "`${BASE_URL}/${params.id}`" + `, {
    method: 'PUT',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify(await request.json()),
  });
  return Response.json(await response.json(), { status: response.status });
}
{{end}}{{if .AllowDelete}}
export async function DELETE(
  _request: Request,
  { params }: { params: { id: string } },
) {
  const response = await fetch(` + "`${BASE_URL}/${params.id}`" + `, { method: 'DELETE' });
  return new Response(null, { status: response.status });
}
{{end}}`))

package codegen

import "text/template"

var fastapiTemplate = template.Must(template.New("fastapi").Parse(`from fastapi import APIRouter, Request, Response
import httpx

router = APIRouter()

BASE_URL = "{{.URL}}"
{{if .AllowGet}}
@router.get("/{{.Name}}")
async def list_{{.FuncName}}():
    async with httpx.AsyncClient() as client:
        response = await client.get(BASE_URL)
    return response.json()
{{end}}{{if .AllowGetByID}}
@router.get("/{{.Name}}/{item_id}")
async def get_{{.FuncName}}(item_id: str):
    async with httpx.AsyncClient() as client:
        response = await client.get(f"{BASE_URL}/{item_id}")
    return Response(content=response.content, status_code=response.status_code,
                    media_type="application/json")
{{end}}{{if .AllowPost}}
@router.post("/{{.Name}}", status_code=201)
async def create_{{.FuncName}}(request: Request):
    body = await request.json()
    async with httpx.AsyncClient() as client:
        response = await client.post(BASE_URL, json=body)
    return response.json()
{{end}}{{if .AllowPut}}
@router.put("/{{.Name}}/{item_id}")
async def update_{{.FuncName}}(item_id: str, request: Request):
    body = await request.json()
    async with httpx.AsyncClient() as client:
        response = await client.put(f"{BASE_URL}/{item_id}", json=body)
    return response.json()
{{end}}{{if .AllowDelete}}
@router.delete("/{{.Name}}/{item_id}", status_code=204)
async def delete_{{.FuncName}}(item_id: str):
    async with httpx.AsyncClient() as client:
        await client.delete(f"{BASE_URL}/{item_id}")
{{end}}`))

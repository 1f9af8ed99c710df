package notify

import "html/template"

var summaryTmpl = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #f4f4f4; padding: 15px; border-radius: 5px; }
        .success { color: #28a745; }
        .warning { color: #ffc107; }
        .error { color: #dc3545; }
        .info { color: #17a2b8; }
        .stats { background-color: #e9ecef; padding: 10px; border-radius: 5px; margin: 10px 0; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Reporte de Procesamiento - Serfinsa</h2>
        <p><strong>Archivo procesado:</strong> {{.Workbook}}</p>
        <p><strong>Tiempo de procesamiento:</strong> {{.Duration}}</p>
        <p><strong>Run ID:</strong> {{.RunID}}</p>
    </div>

    <div class="stats">
        <h3>Resumen de Estad&iacute;sticas</h3>
        <table>
            <tr>
                <th>M&eacute;trica</th>
                <th>Valor</th>
                <th>Estado</th>
            </tr>
            <tr>
                <td>Registros insertados</td>
                <td>{{.Inserted}}</td>
                <td><span class="success">Exitoso</span></td>
            </tr>
            <tr>
                <td>Registros omitidos (duplicados)</td>
                <td>{{.Skipped}}</td>
                <td><span class="warning">Duplicado</span></td>
            </tr>
            <tr>
                <td>Errores durante inserci&oacute;n</td>
                <td>{{.Errors}}</td>
                <td><span class="error">Error</span></td>
            </tr>
            <tr>
                <td>Transaction IDs encontrados</td>
                <td>{{.TransactionsFound}}</td>
                <td><span class="info">Procesado</span></td>
            </tr>
            <tr>
                <td>Lotes creados</td>
                <td>{{.BatchesCreated}}</td>
                <td><span class="info">Procesado</span></td>
            </tr>
            <tr>
                <td>Total de registros procesados</td>
                <td>{{.TotalProcessed}}</td>
                <td><span class="info">Procesado</span></td>
            </tr>
        </table>
    </div>

    <div>
        <h4>Archivos adjuntos:</h4>
        <ul>
            <li><strong>Archivo Excel original:</strong> datos procesados</li>
            <li><strong>Archivo de log:</strong> detalle completo del procesamiento</li>
        </ul>
    </div>

    <div style="margin-top: 20px; padding: 10px; background-color: #f8f9fa; border-radius: 5px;">
        <p><strong>Nota:</strong> mensaje autom&aacute;tico generado por el sistema de liquidaciones de Serfinsa.</p>
    </div>
</body>
</html>
`))

var alertTmpl = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #dc3545; color: white; padding: 15px; border-radius: 5px; }
        .message { background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 10px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Incidencia en el sistema de liquidaciones de Serfinsa</h2>
        <p><strong>Fecha y hora:</strong> {{.Timestamp}}</p>
    </div>

    <div class="message">
        <h3>Archivo no encontrado</h3>
        <p>No se encontr&oacute; ning&uacute;n archivo Excel (.xlsx) para procesar en <code>{{.SearchPath}}</code>.</p>
        <p>El archivo no fue cargado, por lo que la carga no fue realizada.</p>
    </div>
</body>
</html>
`))

var missingTmpl = template.Must(template.New("missing").Parse(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #17a2b8; color: white; padding: 15px; border-radius: 5px; }
        .info { background-color: #d1ecf1; padding: 15px; border-radius: 5px; margin: 10px 0; }
        .stats { background-color: #e9ecef; padding: 15px; border-radius: 5px; margin: 10px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Reporte de Transacciones Faltantes</h2>
        <p><strong>Fecha y hora:</strong> {{.Timestamp}}</p>
    </div>

    <div class="info">
        <h3>Resumen del Reporte</h3>
        <p>Se encontraron <strong>{{.Count}}</strong> transacciones que:</p>
        <ul>
            <li>Tienen el m&eacute;todo de pago de liquidaciones</li>
            <li>Tienen estado exitoso</li>
            <li>NO est&aacute;n registradas en la tabla de liquidaciones</li>
        </ul>
    </div>

    <div class="stats">
        <h3>Detalles del Procesamiento</h3>
        <p>Se adjunta el archivo Excel con el detalle completo de las transacciones faltantes.</p>
        <p><strong>Archivo adjunto:</strong> {{.ReportFile}}</p>
    </div>

    <div style="margin-top: 20px; padding: 10px; background-color: #f8f9fa; border-radius: 5px;">
        <p><strong>Nota:</strong> este reporte se genera autom&aacute;ticamente para identificar transacciones que deber&iacute;an estar en las liquidaciones.</p>
    </div>
</body>
</html>
`))
